// Package rec hands out peripheral reset and enable control.
//
// Each peripheral's clock gating is single-owner: Claim yields the handle
// for a peripheral exactly once per frozen clock tree, so two drivers can
// never race to enable, disable, or reset the same peripheral. Pass the
// handle to the peripheral's constructor and forget it; there is no way
// to get it back.
package rec

import (
	"sync"

	"clocktree-go/errcode"
	"clocktree-go/mmio"
)

// Peripheral identifies one clock-gated peripheral.
type Peripheral uint8

const (
	Dma1 Peripheral = iota
	Dma2
	Adc12
	Sdmmc1
	QuadSpi
	Gpioa
	Gpiob
	Gpioc
	Tim2
	Tim3
	Spi1
	Spi2
	Usart1
	Usart2
	I2c1
	Fdcan
	numPeripherals
)

var names = [numPeripherals]string{
	"dma1", "dma2", "adc12", "sdmmc1", "quadspi",
	"gpioa", "gpiob", "gpioc", "tim2", "tim3",
	"spi1", "spi2", "usart1", "usart2", "i2c1", "fdcan",
}

func (p Peripheral) String() string {
	if p >= numPeripherals {
		return "unknown"
	}
	return names[p]
}

// control locates a peripheral's enable and reset bits in the clock
// control block. Offsets are relative to the block base (RM0433).
type control struct {
	enr  uint32
	rstr uint32
	bit  uint32 // same position in both registers
}

const (
	ahb3ENR  = 0xD4
	ahb1ENR  = 0xD8
	ahb4ENR  = 0xE0
	apb1LENR = 0xE8
	apb2ENR  = 0xF0

	ahb3RSTR  = 0x7C
	ahb1RSTR  = 0x80
	ahb4RSTR  = 0x88
	apb1LRSTR = 0x90
	apb2RSTR  = 0x98
)

var controls = [numPeripherals]control{
	Dma1:    {enr: ahb1ENR, rstr: ahb1RSTR, bit: 1 << 0},
	Dma2:    {enr: ahb1ENR, rstr: ahb1RSTR, bit: 1 << 1},
	Adc12:   {enr: ahb1ENR, rstr: ahb1RSTR, bit: 1 << 5},
	Sdmmc1:  {enr: ahb3ENR, rstr: ahb3RSTR, bit: 1 << 16},
	QuadSpi: {enr: ahb3ENR, rstr: ahb3RSTR, bit: 1 << 14},
	Gpioa:   {enr: ahb4ENR, rstr: ahb4RSTR, bit: 1 << 0},
	Gpiob:   {enr: ahb4ENR, rstr: ahb4RSTR, bit: 1 << 1},
	Gpioc:   {enr: ahb4ENR, rstr: ahb4RSTR, bit: 1 << 2},
	Tim2:    {enr: apb1LENR, rstr: apb1LRSTR, bit: 1 << 0},
	Tim3:    {enr: apb1LENR, rstr: apb1LRSTR, bit: 1 << 1},
	Spi1:    {enr: apb2ENR, rstr: apb2RSTR, bit: 1 << 12},
	Spi2:    {enr: apb1LENR, rstr: apb1LRSTR, bit: 1 << 14},
	Usart1:  {enr: apb2ENR, rstr: apb2RSTR, bit: 1 << 5},
	Usart2:  {enr: apb1LENR, rstr: apb1LRSTR, bit: 1 << 17},
	I2c1:    {enr: apb1LENR, rstr: apb1LRSTR, bit: 1 << 21},
	Fdcan:   {enr: apb1LENR, rstr: apb1LRSTR, bit: 1 << 8},
}

// Peripherals hands out control handles, at most one per peripheral.
type Peripherals struct {
	mu      sync.Mutex
	dev     mmio.Device
	claimed [numPeripherals]bool
}

// New builds the control surface over a frozen clock-control block.
func New(dev mmio.Device) *Peripherals {
	return &Peripherals{dev: dev}
}

// Claim returns the enable/reset handle for p. A second claim of the
// same peripheral fails with errcode.InUse: once a handle has been given
// to a driver it is permanently inaccessible here.
func (ps *Peripherals) Claim(p Peripheral) (*Handle, error) {
	if p >= numPeripherals {
		return nil, &errcode.E{C: errcode.UnknownPeripheral, Op: "rec.Claim"}
	}
	ps.mu.Lock()
	defer ps.mu.Unlock()
	if ps.claimed[p] {
		return nil, &errcode.E{C: errcode.InUse, Op: "rec.Claim", Msg: p.String()}
	}
	ps.claimed[p] = true
	return &Handle{dev: ps.dev, ctl: controls[p], per: p}, nil
}

// Handle controls one peripheral's clock gating. It exposes only enable,
// disable, and reset; methods chain so a driver can do
// h.Enable().Reset() on construction.
type Handle struct {
	dev mmio.Device
	ctl control
	per Peripheral
}

// Peripheral reports which peripheral this handle controls.
func (h *Handle) Peripheral() Peripheral { return h.per }

// Enable gates the peripheral clock on.
func (h *Handle) Enable() *Handle {
	mmio.SetBits(h.dev, h.ctl.enr, h.ctl.bit)
	return h
}

// Disable gates the peripheral clock off.
func (h *Handle) Disable() *Handle {
	mmio.ClearBits(h.dev, h.ctl.enr, h.ctl.bit)
	return h
}

// Reset pulses the peripheral's reset line.
func (h *Handle) Reset() *Handle {
	mmio.SetBits(h.dev, h.ctl.rstr, h.ctl.bit)
	mmio.ClearBits(h.dev, h.ctl.rstr, h.ctl.bit)
	return h
}
