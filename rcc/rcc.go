// Package rcc configures the reset and clock control unit: it turns a
// declarative set of requested clock frequencies into oscillator, PLL
// divider, and bus prescaler register values, verifies hardware
// feasibility, and publishes the achieved frequencies.
//
// A builder pattern is used to specify the state and frequency of the
// clocks. The Freeze method programs the register block in a best-effort
// attempt to generate these clocks; the frequencies actually configured
// are returned in ccdr.Clocks.
//
// No clock specification overrides another, but some imply others:
//
//   - UseHSE(a) implies SysCk(a)
//
//   - SysCk(b) implies Pll1PCk(b) unless b equals HSI or UseHSE(b) was
//     specified
//
//   - Pll1PCk(c) implies Pll1RCk(c/2), including when Pll1PCk was implied
//     by SysCk(c) or MCO2FromPll1PCk(c)
//
// Implied specifications can always be overridden by specifying that
// clock explicitly. If the result cannot be achieved by the hardware,
// Freeze returns a fatal error; there is no recovery path.
//
//	rcc := rcc.Constrain(dev)
//	ccdr, err := rcc.
//		UseHSE(types.MHz(25)).
//		SysCk(types.MHz(400)).
//		Pll1QCk(types.MHz(200)).
//		Freeze(pwrcfg)
//
// The returned Ccdr couples the immutable CoreClocks snapshot with the
// peripheral enable/reset control surface (see the rec package). The
// configuration is consumed by Freeze and cannot be reused.
package rcc

import (
	"clocktree-go/mmio"
	"clocktree-go/types"
)

// Fixed internal oscillator frequencies.
const (
	HSI   types.Hertz = 64_000_000
	CSI   types.Hertz = 4_000_000
	HSI48 types.Hertz = 48_000_000
)

// Hardware maxima for the bus tree (RM0433, highest voltage scale).
const (
	sysCkMax types.Hertz = 480_000_000
	hclkMax  types.Hertz = 240_000_000
	pclkMax  types.Hertz = 120_000_000
)

// Config accumulates requested frequencies and flags before commitment.
// Pure data; no hardware access. A nil field means "not set": it is open
// to implication, while a non-nil field is explicit and never touched.
type Config struct {
	hse       *types.Hertz
	bypassHSE bool
	sysCk     *types.Hertz
	perCk     *types.Hertz
	hclk      *types.Hertz
	pclk1     *types.Hertz
	pclk2     *types.Hertz
	pclk3     *types.Hertz
	pclk4     *types.Hertz
	mco2Pll1P *types.Hertz
	pll1      PllConfig
	pll2      PllConfig
	pll3      PllConfig
}

// Rcc owns the clock-control register block until Freeze consumes it.
type Rcc struct {
	config   Config
	dev      mmio.Device
	consumed bool
}

// Constrain wraps the register block in a configuration builder. The
// device must not be accessed elsewhere until Freeze returns a Ccdr.
func Constrain(dev mmio.Device) *Rcc {
	return &Rcc{dev: dev}
}

func hz(f types.Hertz) *types.Hertz { return &f }

// UseHSE provides an external oscillator of the given frequency.
func (r *Rcc) UseHSE(f types.Hertz) *Rcc {
	r.config.hse = hz(f)
	return r
}

// BypassHSE marks the external source as a clock signal rather than a
// crystal, driving the oscillator stage in bypass mode.
func (r *Rcc) BypassHSE() *Rcc {
	r.config.bypassHSE = true
	return r
}

// SysCk requests a system clock frequency.
func (r *Rcc) SysCk(f types.Hertz) *Rcc {
	r.config.sysCk = hz(f)
	return r
}

// PerCk requests a peripheral kernel clock frequency. It must match one
// of the fixed sources (HSI, CSI) or the HSE frequency.
func (r *Rcc) PerCk(f types.Hertz) *Rcc {
	r.config.perCk = hz(f)
	return r
}

// Hclk requests an AHB clock frequency.
func (r *Rcc) Hclk(f types.Hertz) *Rcc {
	r.config.hclk = hz(f)
	return r
}

// Pclk1 requests the APB1 clock frequency.
func (r *Rcc) Pclk1(f types.Hertz) *Rcc {
	r.config.pclk1 = hz(f)
	return r
}

// Pclk2 requests the APB2 clock frequency.
func (r *Rcc) Pclk2(f types.Hertz) *Rcc {
	r.config.pclk2 = hz(f)
	return r
}

// Pclk3 requests the APB3 clock frequency.
func (r *Rcc) Pclk3(f types.Hertz) *Rcc {
	r.config.pclk3 = hz(f)
	return r
}

// Pclk4 requests the APB4 clock frequency.
func (r *Rcc) Pclk4(f types.Hertz) *Rcc {
	r.config.pclk4 = hz(f)
	return r
}

// MCO2FromPll1PCk routes PLL1's P output to the MCO2 pin at the given
// frequency. Participates in implication like an explicit Pll1PCk
// request unless that output was itself set explicitly.
func (r *Rcc) MCO2FromPll1PCk(f types.Hertz) *Rcc {
	r.config.mco2Pll1P = hz(f)
	return r
}

// Pll1Strategy selects the synthesis strategy for PLL1.
func (r *Rcc) Pll1Strategy(s PllStrategy) *Rcc {
	r.config.pll1.strategy = s
	return r
}

// Pll1PCk requests PLL1's P output frequency.
func (r *Rcc) Pll1PCk(f types.Hertz) *Rcc {
	r.config.pll1.pCk = hz(f)
	return r
}

// Pll1QCk requests PLL1's Q output frequency.
func (r *Rcc) Pll1QCk(f types.Hertz) *Rcc {
	r.config.pll1.qCk = hz(f)
	return r
}

// Pll1RCk requests PLL1's R output frequency.
func (r *Rcc) Pll1RCk(f types.Hertz) *Rcc {
	r.config.pll1.rCk = hz(f)
	return r
}

// Pll2Strategy selects the synthesis strategy for PLL2.
func (r *Rcc) Pll2Strategy(s PllStrategy) *Rcc {
	r.config.pll2.strategy = s
	return r
}

// Pll2PCk requests PLL2's P output frequency.
func (r *Rcc) Pll2PCk(f types.Hertz) *Rcc {
	r.config.pll2.pCk = hz(f)
	return r
}

// Pll2QCk requests PLL2's Q output frequency.
func (r *Rcc) Pll2QCk(f types.Hertz) *Rcc {
	r.config.pll2.qCk = hz(f)
	return r
}

// Pll2RCk requests PLL2's R output frequency.
func (r *Rcc) Pll2RCk(f types.Hertz) *Rcc {
	r.config.pll2.rCk = hz(f)
	return r
}

// Pll3Strategy selects the synthesis strategy for PLL3.
func (r *Rcc) Pll3Strategy(s PllStrategy) *Rcc {
	r.config.pll3.strategy = s
	return r
}

// Pll3PCk requests PLL3's P output frequency.
func (r *Rcc) Pll3PCk(f types.Hertz) *Rcc {
	r.config.pll3.pCk = hz(f)
	return r
}

// Pll3QCk requests PLL3's Q output frequency.
func (r *Rcc) Pll3QCk(f types.Hertz) *Rcc {
	r.config.pll3.qCk = hz(f)
	return r
}

// Pll3RCk requests PLL3's R output frequency.
func (r *Rcc) Pll3RCk(f types.Hertz) *Rcc {
	r.config.pll3.rCk = hz(f)
	return r
}
