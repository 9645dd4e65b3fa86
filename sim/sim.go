// Package sim provides in-memory control blocks whose handshake bits
// behave like the hardware's: ready bits track enable bits and mux
// status fields follow their selection fields. The freeze sequence can
// run against them without hardware, for tests and offline planning.
package sim

import "clocktree-go/mmio"

// Handshake registers of the clock-control block. Mirrors the layout the
// rcc package programs.
const (
	rccSize = 0x100

	regCR   = 0x00
	regCFGR = 0x10

	crHSION  = 1 << 0
	crHSIRDY = 1 << 2
	crHSEON  = 1 << 16
	crHSERDY = 1 << 17
)

var onRdy = []struct{ on, rdy uint32 }{
	{crHSION, crHSIRDY},
	{crHSEON, crHSERDY},
	{1 << 24, 1 << 25}, // PLL1
	{1 << 26, 1 << 27}, // PLL2
	{1 << 28, 1 << 29}, // PLL3
}

// NewRCC returns a simulated clock-control block: oscillators and PLLs
// lock as soon as they are enabled, and the sys_ck mux reports its
// selection immediately.
func NewRCC() *mmio.Mem {
	m := mmio.NewMem(rccSize)
	m.OnWrite = func(m *mmio.Mem, off uint32) {
		switch off {
		case regCR:
			v := m.ReadRegister(regCR)
			var rdy, all uint32
			for _, p := range onRdy {
				all |= p.rdy
				if v&p.on != 0 {
					rdy |= p.rdy
				}
			}
			m.Poke(regCR, v&^all|rdy)
		case regCFGR:
			v := m.ReadRegister(regCFGR)
			sw := v & 0x7
			m.Poke(regCFGR, v&^(uint32(0x7)<<3)|sw<<3)
		}
	}
	return m
}

// Power-control handshake registers.
const (
	pwrSize = 0x20

	regD3CR    = 0x18
	d3crVOSRDY = 1 << 13
)

// NewPWR returns a simulated power-control block whose regulator settles
// immediately after the voltage scale is written.
func NewPWR() *mmio.Mem {
	m := mmio.NewMem(pwrSize)
	m.OnWrite = func(m *mmio.Mem, off uint32) {
		if off == regD3CR {
			m.Poke(regD3CR, m.ReadRegister(regD3CR)|d3crVOSRDY)
		}
	}
	return m
}
