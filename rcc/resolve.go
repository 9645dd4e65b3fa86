package rcc

import "clocktree-go/types"

// resolved is the fully determined clock tree after implication
// expansion. Invariant: every frequency the caller set explicitly
// appears here unchanged.
type resolved struct {
	hse   *types.Hertz
	sysCk types.Hertz
	pll1  PllConfig
	pll2  PllConfig
	pll3  PllConfig
}

// resolve expands a partially specified Config by applying the cascading
// default rules, in order, without touching any explicit setting. Later
// rules read values established by earlier ones. Conflicting explicit
// settings are not detected here; they surface as synthesis or mux
// failures at freeze.
func (c *Config) resolve() resolved {
	out := resolved{
		hse:  c.hse,
		pll1: c.pll1,
		pll2: c.pll2,
		pll3: c.pll3,
	}

	// Rule 1: UseHSE(a) implies SysCk(a).
	switch {
	case c.sysCk != nil:
		out.sysCk = *c.sysCk
	case c.hse != nil:
		out.sysCk = *c.hse
	default:
		out.sysCk = HSI
	}

	// Rule 2: SysCk(b) implies Pll1PCk(b) unless b equals HSI or the
	// HSE frequency, either of which can drive sys_ck directly.
	if out.pll1.pCk == nil {
		fromHSE := c.hse != nil && out.sysCk == *c.hse
		if out.sysCk != HSI && !fromHSE {
			out.pll1.pCk = hz(out.sysCk)
		}
	}

	// MCO2 routed from PLL1 P also stands in for a P request.
	if out.pll1.pCk == nil && c.mco2Pll1P != nil {
		out.pll1.pCk = hz(*c.mco2Pll1P)
	}

	// Rule 3: Pll1PCk(c) implies Pll1RCk(c/2), however the P output
	// came to be resolved.
	if out.pll1.pCk != nil && out.pll1.rCk == nil {
		out.pll1.rCk = hz(*out.pll1.pCk / 2)
	}

	return out
}
