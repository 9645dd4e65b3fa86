package pwr

import (
	"testing"

	"clocktree-go/mmio"
	"clocktree-go/types"
)

// regulator behaves like the hardware: VOSRDY follows any scale write.
func regulator() *mmio.Mem {
	m := mmio.NewMem(BlockSize)
	m.OnWrite = func(m *mmio.Mem, off uint32) {
		if off == regD3CR {
			m.Poke(regD3CR, m.ReadRegister(regD3CR)|d3crVOSRDY)
		}
	}
	return m
}

func TestFreezeSysCkMax(t *testing.T) {
	cases := []struct {
		vos VoltageScale
		max types.Hertz
	}{
		{Vos3, types.MHz(200)},
		{Vos2, types.MHz(300)},
		{Vos1, types.MHz(400)},
		{Vos0, types.MHz(480)},
	}
	for _, tc := range cases {
		pc := Constrain(regulator()).VoltageScale(tc.vos).Freeze()
		if pc.SysCkMax() != tc.max {
			t.Errorf("scale %d: SysCkMax = %v, want %v", tc.vos, pc.SysCkMax(), tc.max)
		}
	}
}

func TestFreezeDefaultScale(t *testing.T) {
	pc := Constrain(regulator()).Freeze()
	if pc.SysCkMax() != types.MHz(400) {
		t.Fatalf("default SysCkMax = %v, want 400 MHz", pc.SysCkMax())
	}
}

func TestFreezeEncoding(t *testing.T) {
	dev := regulator()
	Constrain(dev).VoltageScale(Vos0).Freeze()
	if got := dev.ReadRegister(regD3CR) >> d3crVOSPos & d3crVOSMask; got != 0 {
		t.Fatalf("VOS field = %#x, want the inverted encoding 0 for scale 0", got)
	}

	dev = regulator()
	Constrain(dev).VoltageScale(Vos3).Freeze()
	if got := dev.ReadRegister(regD3CR) >> d3crVOSPos & d3crVOSMask; got != 3 {
		t.Fatalf("VOS field = %#x, want 3 for scale 3", got)
	}
}
