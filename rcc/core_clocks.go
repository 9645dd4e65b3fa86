package rcc

import "clocktree-go/types"

// CoreClocks is the immutable record of every achieved frequency. It is
// created once, at freeze time, and is read-only afterwards: consumers
// receive it by value and can never observe a half-programmed tree.
type CoreClocks struct {
	sysCk types.Hertz
	hclk  types.Hertz
	aclk  types.Hertz
	pclk1 types.Hertz
	pclk2 types.Hertz
	pclk3 types.Hertz
	pclk4 types.Hertz
	perCk types.Hertz
	hsiCk types.Hertz
	hseCk types.Hertz // 0 when no external oscillator is configured

	// Achieved PLL taps indexed by unit; 0 means the tap is not driven.
	pllP [3]types.Hertz
	pllQ [3]types.Hertz
	pllR [3]types.Hertz
}

// SysCk returns the achieved system clock frequency.
func (c *CoreClocks) SysCk() types.Hertz { return c.sysCk }

// Hclk returns the achieved AHB clock frequency.
func (c *CoreClocks) Hclk() types.Hertz { return c.hclk }

// Aclk returns the achieved AXI clock frequency.
func (c *CoreClocks) Aclk() types.Hertz { return c.aclk }

// Pclk1 returns the achieved APB1 clock frequency.
func (c *CoreClocks) Pclk1() types.Hertz { return c.pclk1 }

// Pclk2 returns the achieved APB2 clock frequency.
func (c *CoreClocks) Pclk2() types.Hertz { return c.pclk2 }

// Pclk3 returns the achieved APB3 clock frequency.
func (c *CoreClocks) Pclk3() types.Hertz { return c.pclk3 }

// Pclk4 returns the achieved APB4 clock frequency.
func (c *CoreClocks) Pclk4() types.Hertz { return c.pclk4 }

// PerCk returns the achieved peripheral kernel clock frequency.
func (c *CoreClocks) PerCk() types.Hertz { return c.perCk }

// HsiCk returns the internal oscillator frequency.
func (c *CoreClocks) HsiCk() types.Hertz { return c.hsiCk }

// HseCk returns the external oscillator frequency, if one is configured.
func (c *CoreClocks) HseCk() (types.Hertz, bool) { return tap(c.hseCk) }

// Pll1PCk returns PLL1's P output, if driven.
func (c *CoreClocks) Pll1PCk() (types.Hertz, bool) { return tap(c.pllP[0]) }

// Pll1QCk returns PLL1's Q output, if driven.
func (c *CoreClocks) Pll1QCk() (types.Hertz, bool) { return tap(c.pllQ[0]) }

// Pll1RCk returns PLL1's R output, if driven.
func (c *CoreClocks) Pll1RCk() (types.Hertz, bool) { return tap(c.pllR[0]) }

// Pll2PCk returns PLL2's P output, if driven.
func (c *CoreClocks) Pll2PCk() (types.Hertz, bool) { return tap(c.pllP[1]) }

// Pll2QCk returns PLL2's Q output, if driven.
func (c *CoreClocks) Pll2QCk() (types.Hertz, bool) { return tap(c.pllQ[1]) }

// Pll2RCk returns PLL2's R output, if driven.
func (c *CoreClocks) Pll2RCk() (types.Hertz, bool) { return tap(c.pllR[1]) }

// Pll3PCk returns PLL3's P output, if driven.
func (c *CoreClocks) Pll3PCk() (types.Hertz, bool) { return tap(c.pllP[2]) }

// Pll3QCk returns PLL3's Q output, if driven.
func (c *CoreClocks) Pll3QCk() (types.Hertz, bool) { return tap(c.pllQ[2]) }

// Pll3RCk returns PLL3's R output, if driven.
func (c *CoreClocks) Pll3RCk() (types.Hertz, bool) { return tap(c.pllR[2]) }

func tap(f types.Hertz) (types.Hertz, bool) {
	return f, f != 0
}
