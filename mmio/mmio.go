// Package mmio models a little-endian region of 32-bit hardware registers.
//
// The clock-control unit is programmed through a Device. On linux hosts a
// region can be mapped from physical memory (see DevMem); tests and offline
// planning use the in-memory Mem with scripted side effects.
package mmio

// Device is a region of 32-bit registers addressed by byte offset.
type Device interface {
	ReadRegister(off uint32) uint32
	WriteRegister(off uint32, v uint32)
}

// SetBits sets the bits in mask at off.
func SetBits(d Device, off, mask uint32) {
	d.WriteRegister(off, d.ReadRegister(off)|mask)
}

// ClearBits clears the bits in mask at off.
func ClearBits(d Device, off, mask uint32) {
	d.WriteRegister(off, d.ReadRegister(off)&^mask)
}

// HasBits reports whether any bit in mask is set at off.
func HasBits(d Device, off, mask uint32) bool {
	return d.ReadRegister(off)&mask != 0
}

// ReplaceBits writes val into the field described by mask and pos,
// leaving the other bits unchanged.
func ReplaceBits(d Device, off, val, mask, pos uint32) {
	v := d.ReadRegister(off)
	d.WriteRegister(off, v&^(mask<<pos)|(val&mask)<<pos)
}

// Mem is an in-memory register region. OnWrite, when non-nil, runs after
// every write and may mutate further registers; it is how tests and the
// planning tool model hardware behaviour such as ready bits tracking
// enable bits.
type Mem struct {
	regs    []uint32
	OnWrite func(m *Mem, off uint32)
}

// NewMem returns a zeroed region of size bytes (rounded up to a word).
func NewMem(size uint32) *Mem {
	return &Mem{regs: make([]uint32, (size+3)/4)}
}

func (m *Mem) ReadRegister(off uint32) uint32 {
	return m.regs[off/4]
}

func (m *Mem) WriteRegister(off uint32, v uint32) {
	m.regs[off/4] = v
	if m.OnWrite != nil {
		m.OnWrite(m, off)
	}
}

// Poke writes a register without triggering OnWrite. Intended for use
// from inside OnWrite hooks.
func (m *Mem) Poke(off uint32, v uint32) {
	m.regs[off/4] = v
}
