package rcc

import (
	"clocktree-go/errcode"
	"clocktree-go/mmio"
	"clocktree-go/pwr"
	"clocktree-go/rcc/rec"
	"clocktree-go/types"
	"clocktree-go/x/mathx"
)

// Ccdr, the core clock distribution and reset surface, is generated when
// the configuration is frozen. Clocks holds the achieved frequencies;
// Peripheral hands out the claim-once enable/reset handles.
type Ccdr struct {
	Clocks     CoreClocks
	Peripheral *rec.Peripherals
}

// AHB and APB prescaler encodings, ascending dividers.
var hpreTable = []struct{ div, bits uint32 }{
	{1, 0}, {2, 8}, {4, 9}, {8, 10}, {16, 11},
	{64, 12}, {128, 13}, {256, 14}, {512, 15},
}

var ppreTable = []struct{ div, bits uint32 }{
	{1, 0}, {2, 4}, {4, 5}, {8, 6}, {16, 7},
}

// Freeze consumes the configuration and programs the clock tree in
// power-on order: oscillators first, PLL dividers while each PLL is
// disabled, PLL enable and lock, bus prescalers, and only then the
// system clock multiplexer. It returns the achieved frequencies and the
// peripheral control surface, or a fatal error when the requested tree
// is infeasible or self-contradictory. The configuration cannot be
// reused afterwards.
func (r *Rcc) Freeze(pwrcfg pwr.PowerConfigured) (*Ccdr, error) {
	const op = "rcc.Freeze"
	if r.consumed {
		return nil, &errcode.E{C: errcode.Consumed, Op: op, Msg: "configuration already frozen"}
	}

	res := r.config.resolve()

	// PLLs are sourced from either HSE or HSI.
	src, srcBits := HSI, uint32(pllsrcHSI)
	if res.hse != nil {
		src, srcBits = *res.hse, pllsrcHSE
	}

	plls := [3]*PllConfig{&res.pll1, &res.pll2, &res.pll3}
	var params [3]pllParams
	for i := range plls {
		pp, err := pllDescriptors[i].synthesize(src, plls[i])
		if err != nil {
			return nil, err
		}
		params[i] = pp
	}

	// System clock source. A resolved target no source can supply means
	// the explicit settings contradict each other.
	var sw uint32
	var sysCk types.Hertz
	switch {
	case params[0].inUse() && *res.pll1.pCk == res.sysCk:
		sw, sysCk = swPLL1, params[0].pCk
	case res.hse != nil && res.sysCk == *res.hse:
		sw, sysCk = swHSE, *res.hse
	case res.sysCk == HSI:
		sw, sysCk = swHSI, HSI
	default:
		return nil, &errcode.E{C: errcode.Conflict, Op: op,
			Msg: "no clock source achieves sys_ck " + res.sysCk.String()}
	}
	if max := mathx.Min(sysCkMax, pwrcfg.SysCkMax()); sysCk > max {
		return nil, &errcode.E{C: errcode.Infeasible, Op: op,
			Msg: "sys_ck " + sysCk.String() + " above limit " + max.String()}
	}

	// Bus prescalers: smallest power-of-two divider that honours the
	// request and the hardware ceiling. Freeze never configures a bus
	// clock faster than requested.
	hclk, hpreBits, err := choosePrescaler(op, "hclk", sysCk, capped(r.config.hclk, sysCk, hclkMax), hpreTable)
	if err != nil {
		return nil, err
	}
	var pclk [4]types.Hertz
	var ppreBits [4]uint32
	pclkReq := [4]*types.Hertz{r.config.pclk1, r.config.pclk2, r.config.pclk3, r.config.pclk4}
	pclkName := [4]string{"pclk1", "pclk2", "pclk3", "pclk4"}
	for i := range pclk {
		pclk[i], ppreBits[i], err = choosePrescaler(op, pclkName[i], hclk, capped(pclkReq[i], hclk, pclkMax), ppreTable)
		if err != nil {
			return nil, err
		}
	}

	// Peripheral kernel clock: must come straight from a fixed source.
	perCk, perBits := HSI, uint32(ckperHSI)
	switch {
	case r.config.perCk == nil || *r.config.perCk == HSI:
	case *r.config.perCk == CSI:
		perCk, perBits = CSI, ckperCSI
	case res.hse != nil && *r.config.perCk == *res.hse:
		perCk, perBits = *res.hse, ckperHSE
	default:
		return nil, &errcode.E{C: errcode.Conflict, Op: op,
			Msg: "per_ck must equal hsi_ck, csi_ck or the hse frequency"}
	}

	// ---- Register programming, power-on order ----

	dev := r.dev

	mmio.SetBits(dev, regCR, crHSION)
	for !mmio.HasBits(dev, regCR, crHSIRDY) {
	}
	if res.hse != nil {
		if r.config.bypassHSE {
			mmio.SetBits(dev, regCR, crHSEBYP)
		}
		mmio.SetBits(dev, regCR, crHSEON)
		for !mmio.HasBits(dev, regCR, crHSERDY) {
		}
	}

	// Dividers are written while each PLL is disabled; the PLL is then
	// enabled and must lock before anything selects it.
	for i := range params {
		if !params[i].inUse() {
			continue
		}
		pllDescriptors[i].program(dev, srcBits, &params[i])
		pllDescriptors[i].enable(dev)
	}

	mmio.ReplaceBits(dev, regD1CFGR, hpreBits, d1cfgrHPREMask, d1cfgrHPREPos)
	mmio.ReplaceBits(dev, regD1CFGR, ppreBits[2], d1cfgrD1PPREMask, d1cfgrD1PPREPos)
	mmio.ReplaceBits(dev, regD2CFGR, ppreBits[0], d2cfgrPPRE1Mask, d2cfgrPPRE1Pos)
	mmio.ReplaceBits(dev, regD2CFGR, ppreBits[1], d2cfgrPPRE2Mask, d2cfgrPPRE2Pos)
	mmio.ReplaceBits(dev, regD3CFGR, ppreBits[3], d3cfgrPPREMask, d3cfgrPPREPos)

	mmio.ReplaceBits(dev, regD1CCIPR, perBits, d1ciprCKPERSELMask, d1ciprCKPERSELPos)

	if r.config.mco2Pll1P != nil && params[0].inUse() {
		pre := mco2Prescaler(params[0].pCk, *r.config.mco2Pll1P)
		mmio.ReplaceBits(dev, regCFGR, pre, cfgrMCO2PreMask, cfgrMCO2PrePos)
		mmio.ReplaceBits(dev, regCFGR, mco2Pll1P, cfgrMCO2Mask, cfgrMCO2Pos)
	}

	// Switch the system clock last, once every selected source is
	// locked, and wait for the mux to report the switch.
	mmio.ReplaceBits(dev, regCFGR, sw, cfgrSWMask, cfgrSWPos)
	for (dev.ReadRegister(regCFGR)>>cfgrSWSPos)&cfgrSWSMask != sw {
	}

	r.consumed = true

	clocks := CoreClocks{
		sysCk: sysCk,
		hclk:  hclk,
		aclk:  hclk,
		pclk1: pclk[0],
		pclk2: pclk[1],
		pclk3: pclk[2],
		pclk4: pclk[3],
		perCk: perCk,
		hsiCk: HSI,
	}
	if res.hse != nil {
		clocks.hseCk = *res.hse
	}
	for i := range params {
		clocks.pllP[i] = params[i].pCk
		clocks.pllQ[i] = params[i].qCk
		clocks.pllR[i] = params[i].rCk
	}

	return &Ccdr{Clocks: clocks, Peripheral: rec.New(dev)}, nil
}

// capped resolves a bus clock request: the explicit target if given,
// otherwise the parent clock, never above the hardware ceiling.
func capped(req *types.Hertz, parent, ceil types.Hertz) types.Hertz {
	target := parent
	if req != nil {
		target = *req
	}
	if target > ceil {
		target = ceil
	}
	return target
}

// choosePrescaler returns the highest frequency not exceeding target
// reachable by dividing parent with an entry of table.
func choosePrescaler(op, name string, parent, target types.Hertz, table []struct{ div, bits uint32 }) (types.Hertz, uint32, error) {
	for _, e := range table {
		if f := parent / types.Hertz(e.div); f <= target {
			return f, e.bits, nil
		}
	}
	return 0, 0, &errcode.E{C: errcode.Infeasible, Op: op,
		Msg: "no legal " + name + " prescaler for " + target.String()}
}

// mco2Prescaler picks the MCO2 output divider (1..15) nearest the
// requested pin frequency.
func mco2Prescaler(pll1P, target types.Hertz) uint32 {
	if target == 0 {
		return 1
	}
	pre := mathx.RoundDiv(uint32(pll1P), uint32(target))
	return mathx.Clamp(pre, 1, 15)
}
