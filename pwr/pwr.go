// Package pwr freezes the voltage scaling of the device. The clock tree
// must be configured alongside it: rcc.Freeze requires the
// PowerConfigured token, and the token's voltage scale caps the system
// clock frequency the tree may reach.
package pwr

import (
	"clocktree-go/mmio"
	"clocktree-go/types"
)

// Physical base of the power-control register block.
const (
	BlockBase = 0x5802_4800
	BlockSize = 0x20

	regD3CR = 0x18

	d3crVOSRDY  = 1 << 13
	d3crVOSPos  = 14
	d3crVOSMask = 0x3
)

// VoltageScale selects the regulator output level. Higher scales permit
// higher clock frequencies.
type VoltageScale uint8

const (
	Vos3 VoltageScale = iota // lowest
	Vos2
	Vos1
	Vos0 // highest, boost
)

// sysCkCaps is the maximum system clock per scale (RM0433).
var sysCkCaps = [4]types.Hertz{
	Vos3: 200_000_000,
	Vos2: 300_000_000,
	Vos1: 400_000_000,
	Vos0: 480_000_000,
}

// Pwr owns the power-control register block until frozen.
type Pwr struct {
	dev mmio.Device
	vos VoltageScale
}

// Constrain wraps the power-control register block.
func Constrain(dev mmio.Device) *Pwr {
	return &Pwr{dev: dev, vos: Vos1}
}

// VoltageScale overrides the default scale (Vos1).
func (p *Pwr) VoltageScale(vos VoltageScale) *Pwr {
	p.vos = vos
	return p
}

// Freeze programs the voltage scale, busy-waits for the regulator to
// settle, and returns the token rcc.Freeze requires.
func (p *Pwr) Freeze() PowerConfigured {
	// Register encoding is inverted: scale 3 is 0b11, scale 0 is 0b00.
	mmio.ReplaceBits(p.dev, regD3CR, uint32(3-p.vos), d3crVOSMask, d3crVOSPos)
	for !mmio.HasBits(p.dev, regD3CR, d3crVOSRDY) {
	}
	return PowerConfigured{vos: p.vos}
}

// PowerConfigured proves voltage scaling was frozen before the clock
// tree. Obtainable only from Pwr.Freeze.
type PowerConfigured struct {
	vos VoltageScale
}

// SysCkMax returns the highest system clock the frozen scale supports.
func (pc PowerConfigured) SysCkMax() types.Hertz {
	return sysCkCaps[pc.vos]
}
