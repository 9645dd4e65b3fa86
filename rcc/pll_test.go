package rcc

import (
	"testing"

	"clocktree-go/types"
)

func fabs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}

func TestVcoSetupNormal(t *testing.T) {
	src := types.MHz(25)
	cfg := PllConfig{
		strategy: PllStrategyNormal,
		pCk:      hz(242_000_000),
		qCk:      hz(120_900_000),
		rCk:      hz(30_200_000),
	}

	// PLL2: no restriction on the P divider.
	pp, err := pllDescriptors[1].synthesize(src, &cfg)
	if err != nil {
		t.Fatalf("synthesize: %v", err)
	}

	// Highest PFD frequency in the medium-VCO window.
	if pp.ref <= 1_000_000 || pp.ref > 2_000_000 {
		t.Fatalf("reference %v outside (1, 2] MHz", pp.ref)
	}
	if pp.m > 1 {
		if higher := src / types.Hertz(pp.m-1); higher <= 2_000_000 {
			t.Fatalf("m=%d is not the lowest legal divider (m-1 gives %v)", pp.m, higher)
		}
	}
	if pp.wideVCO {
		t.Fatalf("expected medium VCO band for a 242 MHz target")
	}

	// All taps within 1%.
	for _, tap := range []struct {
		name     string
		achieved types.Hertz
		target   types.Hertz
	}{
		{"p", pp.pCk, *cfg.pCk},
		{"q", pp.qCk, *cfg.qCk},
		{"r", pp.rCk, *cfg.rCk},
	} {
		errHz := fabs(float64(tap.achieved) - float64(tap.target))
		if errHz >= float64(tap.target)/100 {
			t.Errorf("%s_ck %v, target %v: error %.0f Hz above 1%%", tap.name, tap.achieved, tap.target, errHz)
		}
	}
}

func TestVcoSetupNormalWideBand(t *testing.T) {
	// 480 MHz cannot come out of the medium band; the setup must move to
	// the wide one, whose PFD window is 2-16 MHz.
	cfg := PllConfig{strategy: PllStrategyNormal, pCk: hz(480_000_000)}
	pp, err := pllDescriptors[1].synthesize(types.MHz(16), &cfg)
	if err != nil {
		t.Fatalf("synthesize: %v", err)
	}
	if !pp.wideVCO {
		t.Fatalf("expected wide VCO band for a 480 MHz target")
	}
	if pp.ref < 2_000_000 || pp.ref > 16_000_000 {
		t.Fatalf("reference %v outside [2, 16] MHz", pp.ref)
	}
	// 16 MHz divides 480 MHz exactly: m=1, n=30.
	if pp.pCk != 480_000_000 {
		t.Fatalf("p_ck = %v, want exactly 480 MHz", pp.pCk)
	}
}

func TestVcoSetupIterative(t *testing.T) {
	src := types.MHz(25)
	cfg := PllConfig{
		strategy: PllStrategyIterative,
		pCk:      hz(240_000_000),
		qCk:      hz(120_000_000),
		rCk:      hz(30_000_000),
	}

	pp, err := pllDescriptors[1].synthesize(src, &cfg)
	if err != nil {
		t.Fatalf("synthesize: %v", err)
	}

	if pp.m != 5 {
		t.Fatalf("m divider = %d, want 5", pp.m)
	}
	if pp.ref != 5_000_000 {
		t.Fatalf("reference = %v, want 5 MHz", pp.ref)
	}
	if pp.pCk != 240_000_000 {
		t.Fatalf("p_ck = %v, want exactly 240 MHz", pp.pCk)
	}
	if pp.qCk != 120_000_000 {
		t.Fatalf("q_ck = %v, want exactly 120 MHz", pp.qCk)
	}
	if pp.rCk != 30_000_000 {
		t.Fatalf("r_ck = %v, want exactly 30 MHz", pp.rCk)
	}
	if pp.fracn != 0 {
		t.Fatalf("iterative strategy must not use the fractional divider")
	}
}

func TestVcoSetupFractional(t *testing.T) {
	src := types.MHz(16)
	pTarget := types.Hertz(48_000 * 256)
	qTarget := types.Hertz(48_000 * 150)
	rTarget := types.Hertz(48_000 * 140)
	cfg := PllConfig{
		strategy: PllStrategyFractional,
		pCk:      hz(pTarget),
		qCk:      hz(qTarget),
		rCk:      hz(rTarget),
	}

	pp, err := pllDescriptors[1].synthesize(src, &cfg)
	if err != nil {
		t.Fatalf("synthesize: %v", err)
	}

	// The P clock sits just below the target with a finely tuned FRACN.
	if pp.pCk > pTarget {
		t.Fatalf("p_ck %v above target %v", pp.pCk, pTarget)
	}
	if errHz := fabs(float64(pp.pCk) - float64(pTarget)); errHz >= float64(pTarget)/500_000 {
		t.Fatalf("p_ck %v: error %.1f Hz above 2 ppm", pp.pCk, errHz)
	}

	// Q/R accuracy trails P but never exceeds the target.
	if pp.qCk > qTarget {
		t.Errorf("q_ck %v above target %v", pp.qCk, qTarget)
	}
	if pp.rCk > rTarget {
		t.Errorf("r_ck %v above target %v", pp.rCk, rTarget)
	}
}

func TestVcoSetupFractionalNotLess(t *testing.T) {
	src := types.MHz(16)
	pTarget := types.Hertz(48_000 * 256)
	qTarget := types.Hertz(48_000 * 150)
	rTarget := types.Hertz(48_000 * 140)

	notLess := PllConfig{
		strategy: PllStrategyFractionalNotLess,
		pCk:      hz(pTarget),
		qCk:      hz(qTarget),
		rCk:      hz(rTarget),
	}
	pp, err := pllDescriptors[1].synthesize(src, &notLess)
	if err != nil {
		t.Fatalf("synthesize: %v", err)
	}

	if pp.pCk < pTarget {
		t.Fatalf("p_ck %v below target %v", pp.pCk, pTarget)
	}
	if errHz := fabs(float64(pp.pCk) - float64(pTarget)); errHz >= float64(pTarget)/500_000 {
		t.Fatalf("p_ck %v: error %.1f Hz above 2 ppm", pp.pCk, errHz)
	}
	if pp.qCk < qTarget {
		t.Errorf("q_ck %v below target %v", pp.qCk, qTarget)
	}
	if pp.rCk < rTarget {
		t.Errorf("r_ck %v below target %v", pp.rCk, rTarget)
	}

	// Strictly at or above the Fractional result for the same inputs.
	frac := notLess
	frac.strategy = PllStrategyFractional
	fp, err := pllDescriptors[1].synthesize(src, &frac)
	if err != nil {
		t.Fatalf("synthesize fractional: %v", err)
	}
	if pp.pCk < fp.pCk {
		t.Fatalf("not-less p_ck %v below fractional p_ck %v", pp.pCk, fp.pCk)
	}
}

func TestReferenceBandAllStrategies(t *testing.T) {
	inputs := []types.Hertz{types.MHz(4), types.MHz(8), types.MHz(16), types.MHz(25), types.MHz(50), HSI}
	strategies := []PllStrategy{
		PllStrategyNormal, PllStrategyIterative,
		PllStrategyFractional, PllStrategyFractionalNotLess,
	}
	for _, src := range inputs {
		for _, s := range strategies {
			cfg := PllConfig{strategy: s, pCk: hz(types.MHz(500))}
			pp, err := pllDescriptors[1].synthesize(src, &cfg)
			if err != nil {
				t.Fatalf("src %v strategy %d: %v", src, s, err)
			}
			// 500 MHz forces the wide band in every strategy.
			if pp.ref < 2_000_000 || pp.ref > 16_000_000 {
				t.Errorf("src %v strategy %d: reference %v outside [2, 16] MHz", src, s, pp.ref)
			}
		}
	}
}

func TestSynthesisIdempotent(t *testing.T) {
	cfg := PllConfig{
		strategy: PllStrategyFractional,
		pCk:      hz(48_000 * 256),
		qCk:      hz(48_000 * 150),
	}
	a, err := pllDescriptors[2].synthesize(types.MHz(16), &cfg)
	if err != nil {
		t.Fatalf("first synthesize: %v", err)
	}
	b, err := pllDescriptors[2].synthesize(types.MHz(16), &cfg)
	if err != nil {
		t.Fatalf("second synthesize: %v", err)
	}
	if a != b {
		t.Fatalf("same config produced different results:\n%+v\n%+v", a, b)
	}
}

func TestPll1PDividerRestricted(t *testing.T) {
	// PLL1's P tap never divides by an odd value above one; the same
	// request on PLL2 may.
	cfg := PllConfig{strategy: PllStrategyIterative, pCk: hz(types.MHz(240))}

	p1, err := pllDescriptors[0].synthesize(types.MHz(25), &cfg)
	if err != nil {
		t.Fatalf("pll1: %v", err)
	}
	if p1.p != 2 {
		t.Fatalf("pll1 p divider = %d, want 2 (highest permitted)", p1.p)
	}

	p2, err := pllDescriptors[1].synthesize(types.MHz(25), &cfg)
	if err != nil {
		t.Fatalf("pll2: %v", err)
	}
	if p2.p != 3 {
		t.Fatalf("pll2 p divider = %d, want 3 (highest VCO)", p2.p)
	}
}

func TestSynthesizeInfeasible(t *testing.T) {
	cases := []struct {
		name string
		src  types.Hertz
		cfg  PllConfig
	}{
		{
			name: "zero target",
			src:  types.MHz(25),
			cfg:  PllConfig{strategy: PllStrategyNormal, pCk: hz(0)},
		},
		{
			name: "target above VCO ceiling",
			src:  types.MHz(25),
			cfg:  PllConfig{strategy: PllStrategyIterative, pCk: hz(types.MHz(900))},
		},
		{
			name: "source below reference band",
			src:  types.KHz(500),
			cfg:  PllConfig{strategy: PllStrategyIterative, pCk: hz(types.MHz(240))},
		},
		{
			name: "fractional q divider out of range",
			src:  types.MHz(16),
			cfg: PllConfig{
				strategy: PllStrategyFractional,
				pCk:      hz(48_000 * 256),
				qCk:      hz(48_000 * 63), // would need a divider above 128
			},
		},
	}
	for _, tc := range cases {
		if _, err := pllDescriptors[1].synthesize(tc.src, &tc.cfg); err == nil {
			t.Errorf("%s: expected feasibility failure", tc.name)
		}
	}
}

func TestSynthesizeNoPRequest(t *testing.T) {
	// Q/R taps divide the P VCO; without a P request nothing runs.
	cfg := PllConfig{strategy: PllStrategyNormal, qCk: hz(types.MHz(100))}
	pp, err := pllDescriptors[1].synthesize(types.MHz(25), &cfg)
	if err != nil {
		t.Fatalf("synthesize: %v", err)
	}
	if pp.inUse() {
		t.Fatalf("PLL configured without a P output request: %+v", pp)
	}
}

func TestCalcFracN(t *testing.T) {
	// 16 MHz / 5 = 3.2 MHz reference, VCO target 835.584 MHz: N = 261
	// remainder 384 kHz, fracn = floor(8192 * 0.12) = 983.
	ref := types.Hertz(3_200_000)
	vcoTarget := types.Hertz(835_584_000)
	n := uint32(vcoTarget / ref)
	if n != 261 {
		t.Fatalf("n = %d, want 261", n)
	}
	if f := calcFracN(ref, n, vcoTarget); f != 983 {
		t.Fatalf("fracn = %d, want 983", f)
	}
}
