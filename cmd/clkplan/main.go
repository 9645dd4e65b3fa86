// cmd/clkplan/main.go
//
// Clock planning: runs the full configuration and freeze sequence and
// prints the achieved tree. By default it programs a simulated control
// block, so a frequency plan can be checked before it goes near a
// board; -commit maps the real register blocks through /dev/mem and
// programs the hardware.
package main

import (
	"flag"
	"fmt"
	"os"

	"clocktree-go/mmio"
	"clocktree-go/pwr"
	"clocktree-go/rcc"
	"clocktree-go/sim"
	"clocktree-go/types"
)

var (
	hseHz  = flag.Uint("hse", 0, "external oscillator frequency in Hz (0 = none)")
	bypass = flag.Bool("bypass", false, "external source is a clock signal, not a crystal")
	sysHz  = flag.Uint("sys", 0, "target sys_ck in Hz (0 = default)")
	hclkHz = flag.Uint("hclk", 0, "target AHB clock in Hz (0 = default)")
	perHz  = flag.Uint("per", 0, "target peripheral kernel clock in Hz (0 = default)")
	vos    = flag.Uint("vos", 1, "voltage scale 0 (fastest) to 3 (slowest)")
	commit = flag.Bool("commit", false, "program the real register blocks via /dev/mem")

	pclkHz [4]*uint

	pllStrategy      [3]*string
	pllP, pllQ, pllR [3]*uint
)

func init() {
	for i := 0; i < 4; i++ {
		name := fmt.Sprintf("pclk%d", i+1)
		pclkHz[i] = flag.Uint(name, 0, "target "+name+" in Hz (0 = default)")
	}
	for i := 0; i < 3; i++ {
		n := i + 1
		pllStrategy[i] = flag.String(fmt.Sprintf("pll%d-strategy", n), "normal",
			"normal|iterative|fractional|fractional-not-less")
		pllP[i] = flag.Uint(fmt.Sprintf("pll%d-p", n), 0, fmt.Sprintf("target pll%d_p_ck in Hz", n))
		pllQ[i] = flag.Uint(fmt.Sprintf("pll%d-q", n), 0, fmt.Sprintf("target pll%d_q_ck in Hz", n))
		pllR[i] = flag.Uint(fmt.Sprintf("pll%d-r", n), 0, fmt.Sprintf("target pll%d_r_ck in Hz", n))
	}
}

func parseStrategy(s string) (rcc.PllStrategy, error) {
	switch s {
	case "normal":
		return rcc.PllStrategyNormal, nil
	case "iterative":
		return rcc.PllStrategyIterative, nil
	case "fractional":
		return rcc.PllStrategyFractional, nil
	case "fractional-not-less":
		return rcc.PllStrategyFractionalNotLess, nil
	}
	return 0, fmt.Errorf("unknown strategy %q", s)
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "clkplan: "+format+"\n", args...)
	os.Exit(1)
}

// devices returns the register blocks to program: simulated by default,
// the real ones when committing.
func devices() (rccDev, pwrDev mmio.Device) {
	if !*commit {
		return sim.NewRCC(), sim.NewPWR()
	}
	rd, err := mmio.MapDevMem(rcc.BlockBase, rcc.BlockSize)
	if err != nil {
		fatalf("map clock control block: %v", err)
	}
	pd, err := mmio.MapDevMem(pwr.BlockBase, pwr.BlockSize)
	if err != nil {
		fatalf("map power control block: %v", err)
	}
	return rd, pd
}

func main() {
	flag.Parse()

	if *vos > 3 {
		fatalf("vos must be 0..3")
	}
	rccDev, pwrDev := devices()
	pwrcfg := pwr.Constrain(pwrDev).
		VoltageScale(pwr.VoltageScale(3 - *vos)).
		Freeze()

	r := rcc.Constrain(rccDev)
	if *hseHz != 0 {
		r.UseHSE(types.Hertz(*hseHz))
	}
	if *bypass {
		r.BypassHSE()
	}
	if *sysHz != 0 {
		r.SysCk(types.Hertz(*sysHz))
	}
	if *hclkHz != 0 {
		r.Hclk(types.Hertz(*hclkHz))
	}
	if *perHz != 0 {
		r.PerCk(types.Hertz(*perHz))
	}
	pclkSet := [4]func(types.Hertz) *rcc.Rcc{r.Pclk1, r.Pclk2, r.Pclk3, r.Pclk4}
	for i, f := range pclkHz {
		if *f != 0 {
			pclkSet[i](types.Hertz(*f))
		}
	}

	strategySet := [3]func(rcc.PllStrategy) *rcc.Rcc{r.Pll1Strategy, r.Pll2Strategy, r.Pll3Strategy}
	pSet := [3]func(types.Hertz) *rcc.Rcc{r.Pll1PCk, r.Pll2PCk, r.Pll3PCk}
	qSet := [3]func(types.Hertz) *rcc.Rcc{r.Pll1QCk, r.Pll2QCk, r.Pll3QCk}
	rSet := [3]func(types.Hertz) *rcc.Rcc{r.Pll1RCk, r.Pll2RCk, r.Pll3RCk}
	for i := 0; i < 3; i++ {
		s, err := parseStrategy(*pllStrategy[i])
		if err != nil {
			fatalf("%v", err)
		}
		strategySet[i](s)
		if *pllP[i] != 0 {
			pSet[i](types.Hertz(*pllP[i]))
		}
		if *pllQ[i] != 0 {
			qSet[i](types.Hertz(*pllQ[i]))
		}
		if *pllR[i] != 0 {
			rSet[i](types.Hertz(*pllR[i]))
		}
	}

	ccdr, err := r.Freeze(pwrcfg)
	if err != nil {
		fatalf("freeze failed: %v", err)
	}

	clk := &ccdr.Clocks
	fmt.Printf("sys_ck  %v\n", clk.SysCk())
	fmt.Printf("hclk    %v\n", clk.Hclk())
	fmt.Printf("pclk1   %v\n", clk.Pclk1())
	fmt.Printf("pclk2   %v\n", clk.Pclk2())
	fmt.Printf("pclk3   %v\n", clk.Pclk3())
	fmt.Printf("pclk4   %v\n", clk.Pclk4())
	fmt.Printf("per_ck  %v\n", clk.PerCk())

	taps := []struct {
		name string
		get  func() (types.Hertz, bool)
	}{
		{"pll1_p_ck", clk.Pll1PCk}, {"pll1_q_ck", clk.Pll1QCk}, {"pll1_r_ck", clk.Pll1RCk},
		{"pll2_p_ck", clk.Pll2PCk}, {"pll2_q_ck", clk.Pll2QCk}, {"pll2_r_ck", clk.Pll2RCk},
		{"pll3_p_ck", clk.Pll3PCk}, {"pll3_q_ck", clk.Pll3QCk}, {"pll3_r_ck", clk.Pll3RCk},
	}
	for _, t := range taps {
		if f, ok := t.get(); ok {
			fmt.Printf("%s  %v\n", t.name, f)
		}
	}
}
