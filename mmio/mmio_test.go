package mmio

import "testing"

func TestBitHelpers(t *testing.T) {
	m := NewMem(0x10)

	SetBits(m, 0x4, 0x5)
	if got := m.ReadRegister(0x4); got != 0x5 {
		t.Fatalf("after SetBits: %#x", got)
	}
	if !HasBits(m, 0x4, 0x4) || HasBits(m, 0x4, 0x2) {
		t.Fatalf("HasBits wrong for %#x", m.ReadRegister(0x4))
	}
	ClearBits(m, 0x4, 0x1)
	if got := m.ReadRegister(0x4); got != 0x4 {
		t.Fatalf("after ClearBits: %#x", got)
	}
}

func TestReplaceBits(t *testing.T) {
	m := NewMem(0x10)
	m.WriteRegister(0x0, 0xFFFF_FFFF)

	ReplaceBits(m, 0x0, 0x5, 0xF, 8)
	if got := m.ReadRegister(0x0); got != 0xFFFF_F5FF {
		t.Fatalf("field not replaced: %#x", got)
	}
	// Value wider than the mask is truncated to it.
	ReplaceBits(m, 0x0, 0x35, 0xF, 8)
	if got := m.ReadRegister(0x0) >> 8 & 0xF; got != 0x5 {
		t.Fatalf("field = %#x, want masked 0x5", got)
	}
}

func TestMemOnWrite(t *testing.T) {
	m := NewMem(0x10)
	m.OnWrite = func(m *Mem, off uint32) {
		if off == 0x0 {
			m.Poke(0x4, m.ReadRegister(0x0)+1)
		}
	}

	m.WriteRegister(0x0, 41)
	if got := m.ReadRegister(0x4); got != 42 {
		t.Fatalf("hook result = %d, want 42", got)
	}

	// Poke must not re-enter the hook.
	m.Poke(0x0, 100)
	if got := m.ReadRegister(0x4); got != 42 {
		t.Fatalf("Poke triggered the hook: %d", got)
	}
}
