package rcc

import (
	"math"

	"clocktree-go/errcode"
	"clocktree-go/mmio"
	"clocktree-go/types"
	"clocktree-go/x/mathx"
)

// PllStrategy selects how a PLL's reference and feedback dividers are
// chosen for a requested P output.
type PllStrategy uint8

const (
	// PllStrategyNormal: highest PFD frequency, highest VCO frequency
	// in the band appropriate to the requested output.
	PllStrategyNormal PllStrategy = iota
	// PllStrategyIterative: wide VCO, PFD frequency chosen for accuracy,
	// highest VCO frequency.
	PllStrategyIterative
	// PllStrategyFractional: as Iterative, then uses fractional mode to
	// set the P clock as close as possible to, and never above, the
	// target frequency.
	PllStrategyFractional
	// PllStrategyFractionalNotLess: as Fractional, but the achieved P
	// clock is not less than the target frequency.
	PllStrategyFractionalNotLess
)

// PllConfig is the per-unit configuration: a strategy and up to three
// requested output taps. The zero value requests nothing.
type PllConfig struct {
	strategy PllStrategy
	pCk      *types.Hertz
	qCk      *types.Hertz
	rCk      *types.Hertz
}

const (
	fracnDivisor = 8192 // 2 ** 13
	fracnMax     = fracnDivisor - 1

	pllMMax   = 63
	pllNMin   = 4
	pllNMax   = 512
	pllDivMax = 128

	// VCO bands and their PFD input windows (RM0433).
	vcoMedMin  types.Hertz = 150_000_000
	vcoMedMax  types.Hertz = 420_000_000
	vcoWideMin types.Hertz = 192_000_000
	vcoWideMax types.Hertz = 836_000_000

	pfdMedMin  types.Hertz = 1_000_000
	pfdMedMax  types.Hertz = 2_000_000
	pfdWideMin types.Hertz = 2_000_000
	pfdWideMax types.Hertz = 16_000_000
)

// pll1PDividers is the restricted capability table for PLL1's P tap:
// division by one or by an even factor; odd factors above one are not
// allowed on this output.
var pll1PDividers = func() []uint32 {
	d := make([]uint32, 0, 1+pllDivMax/2)
	d = append(d, 1)
	for p := uint32(2); p <= pllDivMax; p += 2 {
		d = append(d, p)
	}
	return d
}()

// pllDescriptor parameterizes synthesis and register programming for one
// PLL unit, so a single implementation serves all three.
type pllDescriptor struct {
	name      string
	divrOff   uint32
	fracrOff  uint32
	divmPos   uint32   // DIVMx position in PLLCKSELR
	cfgShift  uint32   // FRACEN/VCOSEL/RGE nibble position in PLLCFGR
	divenPos  uint32   // DIVPxEN position in PLLCFGR
	onMask    uint32   // CR enable bit
	rdyMask   uint32   // CR lock bit
	pDividers []uint32 // permitted P dividers, ascending; nil = any 1..128
}

var pllDescriptors = [3]pllDescriptor{
	{
		name: "pll1", divrOff: regPLL1DIVR, fracrOff: regPLL1FRACR,
		divmPos: pllckselrDIVM1Pos, cfgShift: 0, divenPos: pllcfgrDIVP1ENPos,
		onMask: crPLL1ON, rdyMask: crPLL1RDY,
		pDividers: pll1PDividers,
	},
	{
		name: "pll2", divrOff: regPLL2DIVR, fracrOff: regPLL2FRACR,
		divmPos: pllckselrDIVM1Pos + 8, cfgShift: 4, divenPos: pllcfgrDIVP1ENPos + 3,
		onMask: crPLL1ON << 2, rdyMask: crPLL1RDY << 2,
	},
	{
		name: "pll3", divrOff: regPLL3DIVR, fracrOff: regPLL3FRACR,
		divmPos: pllckselrDIVM1Pos + 16, cfgShift: 8, divenPos: pllcfgrDIVP1ENPos + 6,
		onMask: crPLL1ON << 4, rdyMask: crPLL1RDY << 4,
	},
}

// pllParams is the synthesis result for one unit: register-ready divider
// values plus the exact achieved frequencies.
type pllParams struct {
	m, n, fracn uint32
	p, q, r     uint32 // 0 when the tap is unused
	wideVCO     bool
	rge         uint32
	ref         types.Hertz
	pCk         types.Hertz
	qCk         types.Hertz
	rCk         types.Hertz
}

func (pp *pllParams) inUse() bool { return pp.p != 0 }

func (d *pllDescriptor) infeasible(msg string) error {
	return &errcode.E{C: errcode.Infeasible, Op: d.name, Msg: msg}
}

func (d *pllDescriptor) minP() uint32 {
	if d.pDividers != nil {
		return d.pDividers[0]
	}
	return 1
}

// synthesize computes the divider set for one PLL unit from the effective
// input frequency. Nothing is computed unless the P output was requested:
// the Q and R taps divide the same VCO, so they cannot run on their own.
func (d *pllDescriptor) synthesize(src types.Hertz, cfg *PllConfig) (pllParams, error) {
	if cfg.pCk == nil {
		return pllParams{}, nil
	}
	output := *cfg.pCk
	if output == 0 {
		return pllParams{}, d.infeasible("zero output frequency requested")
	}
	if output > vcoWideMax {
		return pllParams{}, d.infeasible("output above VCO ceiling: " + output.String())
	}

	var (
		pp        pllParams
		vcoTarget types.Hertz
		err       error
	)
	switch cfg.strategy {
	case PllStrategyNormal:
		err = d.vcoSetupNormal(src, output, &pp, &vcoTarget)
	default: // Iterative, Fractional, FractionalNotLess
		err = d.vcoSetupIterative(src, output, &pp, &vcoTarget)
	}
	if err != nil {
		return pllParams{}, err
	}

	// Feedback divider. Integer part first.
	n := uint32(vcoTarget / pp.ref)
	var fracn uint32
	switch cfg.strategy {
	case PllStrategyFractional, PllStrategyFractionalNotLess:
		fracn = calcFracN(pp.ref, n, vcoTarget)
		if cfg.strategy == PllStrategyFractionalNotLess {
			// One fractional step up guarantees the achieved output is
			// not less than the target, carrying into N on overflow.
			fracn++
			if fracn > fracnMax {
				fracn = 0
				n++
			}
		}
	}
	if n < pllNMin || n > pllNMax {
		return pllParams{}, d.infeasible("feedback divider out of range")
	}
	pp.n, pp.fracn = n, fracn

	// Achieved VCO frequency times fracnDivisor. Exact integer; all
	// achieved taps divide out of this.
	vcoNum := uint64(pp.ref) * uint64(n*fracnDivisor+fracn)
	pp.pCk = types.Hertz(vcoNum / (uint64(pp.p) * fracnDivisor))

	if cfg.qCk != nil {
		pp.q, err = d.calcCkDiv(cfg.strategy, vcoNum, *cfg.qCk)
		if err != nil {
			return pllParams{}, err
		}
		pp.qCk = types.Hertz(vcoNum / (uint64(pp.q) * fracnDivisor))
	}
	if cfg.rCk != nil {
		pp.r, err = d.calcCkDiv(cfg.strategy, vcoNum, *cfg.rCk)
		if err != nil {
			return pllParams{}, err
		}
		pp.rCk = types.Hertz(vcoNum / (uint64(pp.r) * fracnDivisor))
	}
	return pp, nil
}

// vcoSetupNormal picks the highest PFD frequency (lowest input divider
// inside the band's window) and the highest VCO frequency. The band is
// selected from the magnitude of the requested output.
func (d *pllDescriptor) vcoSetupNormal(src, output types.Hertz, pp *pllParams, vcoTarget *types.Hertz) error {
	wide := output*types.Hertz(d.minP()) > vcoMedMax

	pfdMin, pfdMax := pfdMedMin, pfdMedMax
	vcoMin, vcoMax := vcoMedMin, vcoMedMax
	if wide {
		pfdMin, pfdMax = pfdWideMin, pfdWideMax
		vcoMin, vcoMax = vcoWideMin, vcoWideMax
	}

	m := mathx.Max(mathx.CeilDiv(uint32(src), uint32(pfdMax)), 1)
	if m > pllMMax {
		return d.infeasible("input frequency too high for reference band")
	}
	ref := src / types.Hertz(m)
	if ref < pfdMin {
		return d.infeasible("input frequency too low for reference band")
	}

	p, ok := d.highestP(output, vcoMin, vcoMax)
	if !ok {
		return d.infeasible("no legal output divider for " + output.String())
	}

	pp.m, pp.p, pp.ref = m, p, ref
	pp.wideVCO, pp.rge = wide, rgeFor(ref)
	*vcoTarget = output * types.Hertz(p)
	return nil
}

// vcoSetupIterative scans every legal input divider and keeps the one
// whose closest integer feedback ratio lands nearest the target VCO
// frequency, ties to the lowest divider. Wide VCO band.
func (d *pllDescriptor) vcoSetupIterative(src, output types.Hertz, pp *pllParams, vcoTarget *types.Hertz) error {
	p, ok := d.highestP(output, vcoWideMin, vcoWideMax)
	if !ok {
		return d.infeasible("no legal output divider for " + output.String())
	}
	target := output * types.Hertz(p)

	mMin := mathx.Max(mathx.CeilDiv(uint32(src), uint32(pfdWideMax)), 1)
	mMax := mathx.Min(uint32(src/pfdWideMin), pllMMax)
	if mMin > mMax {
		return d.infeasible("no legal reference divider")
	}

	var bestM uint32
	var bestDiff types.Hertz
	for m := mMin; m <= mMax; m++ {
		ref := src / types.Hertz(m)
		n := target / ref
		diff := target - ref*n // n is floored, so never negative
		if bestM == 0 || diff < bestDiff {
			bestM, bestDiff = m, diff
		}
	}

	ref := src / types.Hertz(bestM)
	pp.m, pp.p, pp.ref = bestM, p, ref
	pp.wideVCO, pp.rge = true, rgeFor(ref)
	*vcoTarget = target
	return nil
}

// highestP chooses the largest permitted output divider keeping the VCO
// inside the band, i.e. the highest VCO frequency for this output.
func (d *pllDescriptor) highestP(output, vcoMin, vcoMax types.Hertz) (uint32, bool) {
	max := uint32(vcoMax / output)
	if max == 0 {
		return 0, false
	}
	if max > pllDivMax {
		max = pllDivMax
	}

	p := max
	if d.pDividers != nil {
		p = 0
		for _, cand := range d.pDividers {
			if cand > max {
				break
			}
			p = cand
		}
		if p == 0 {
			return 0, false
		}
	}
	if output*types.Hertz(p) < vcoMin {
		return 0, false
	}
	return p, true
}

// calcFracN returns the 13-bit fractional feedback component giving the
// largest achieved VCO frequency not exceeding the target.
func calcFracN(ref types.Hertz, n uint32, vcoTarget types.Hertz) uint32 {
	rem := uint64(vcoTarget) - uint64(ref)*uint64(n)
	f := rem * fracnDivisor / uint64(ref) // round toward zero
	if f > fracnMax {
		f = fracnMax
	}
	return uint32(f)
}

// calcCkDiv finds a {Q,R} output divider against the achieved VCO
// frequency (scaled by fracnDivisor, exact). Must NOT be used for the
// P divider, which carries additional restrictions on PLL1. A divider
// the hardware cannot hold while keeping the strategy's rounding
// contract is a feasibility failure, never a silently clamped value.
func (d *pllDescriptor) calcCkDiv(strategy PllStrategy, vcoNum uint64, target types.Hertz) (uint32, error) {
	if target == 0 {
		return 0, d.infeasible("zero output frequency requested")
	}
	t := uint64(target) * fracnDivisor
	div := vcoNum / t // output >= target
	switch strategy {
	case PllStrategyFractional:
		// Round the divider up: the achieved output never exceeds the
		// target.
		if vcoNum%t != 0 {
			div++
		}
		if div > pllDivMax {
			return 0, d.infeasible("output divider out of range for " + target.String())
		}
	case PllStrategyFractionalNotLess:
		// Keep the floored divider: the achieved output is not less
		// than the target.
		if div == 0 {
			return 0, d.infeasible("VCO below target " + target.String())
		}
		if div > pllDivMax {
			div = pllDivMax // still not less than target
		}
	default:
		// Nearest achieved output frequency.
		vco := float64(vcoNum) / fracnDivisor
		if div == 0 {
			div = 1
		} else if div >= pllDivMax {
			div = pllDivMax
		} else if math.Abs(vco/float64(div+1)-float64(target)) <
			math.Abs(vco/float64(div)-float64(target)) {
			div++
		}
	}
	return uint32(div), nil
}

// rgeFor encodes the PFD input range field for a reference frequency.
func rgeFor(ref types.Hertz) uint32 {
	switch {
	case ref < 2_000_000:
		return rgeRange1
	case ref < 4_000_000:
		return rgeRange2
	case ref < 8_000_000:
		return rgeRange4
	default:
		return rgeRange8
	}
}

// program writes the divider fields for this unit. The unit is disabled
// first: divider fields must never be rewritten while the PLL runs.
func (d *pllDescriptor) program(dev mmio.Device, src uint32, pp *pllParams) {
	mmio.ClearBits(dev, regCR, d.onMask)

	mmio.ReplaceBits(dev, regPLLCKSELR, src, pllckselrSRCMask, pllckselrSRCPos)
	mmio.ReplaceBits(dev, regPLLCKSELR, pp.m, pllckselrDIVMMask, d.divmPos)

	divr := ((pp.n - 1) & divrNMask << divrNPos) |
		((pp.p - 1) & divrPMask << divrPPos)
	if pp.q != 0 {
		divr |= (pp.q - 1) & divrQMask << divrQPos
	}
	if pp.r != 0 {
		divr |= (pp.r - 1) & divrRMask << divrRPos
	}
	dev.WriteRegister(d.divrOff, divr)
	dev.WriteRegister(d.fracrOff, pp.fracn&fracrMask<<fracrPos)

	cfg := pp.rge << pllcfgrRGEPos
	if !pp.wideVCO {
		cfg |= pllcfgrVCOSEL
	}
	if pp.fracn != 0 {
		cfg |= pllcfgrFRACEN
	}
	mmio.ReplaceBits(dev, regPLLCFGR, cfg, 0xF, d.cfgShift)

	en := uint32(1) // P output always driven when the unit is in use
	if pp.q != 0 {
		en |= 2
	}
	if pp.r != 0 {
		en |= 4
	}
	mmio.ReplaceBits(dev, regPLLCFGR, en, 0x7, d.divenPos)
}

// enable turns the unit on and busy-waits for lock. No timeout: a stuck
// lock bit is the external watchdog's problem.
func (d *pllDescriptor) enable(dev mmio.Device) {
	mmio.SetBits(dev, regCR, d.onMask)
	for !mmio.HasBits(dev, regCR, d.rdyMask) {
	}
}
