package rcc

// Register byte offsets and bitfields of the reset and clock control unit,
// per reference manual RM0433.

const (
	// Physical base of the register block, for /dev/mem style mappings.
	BlockBase = 0x5802_4400
	// BlockSize covers every register the driver touches.
	BlockSize = 0x100

	// --- Register offsets ---

	regCR        = 0x00 // source control
	regCFGR      = 0x10 // sys_ck mux, MCO
	regD1CFGR    = 0x18 // HPRE, D1PPRE, D1CPRE
	regD2CFGR    = 0x1C // D2PPRE1, D2PPRE2
	regD3CFGR    = 0x20 // D3PPRE
	regPLLCKSELR = 0x28 // PLL source, DIVM1..3
	regPLLCFGR   = 0x2C // FRACEN, VCOSEL, RGE, DIVxEN
	regPLL1DIVR  = 0x30
	regPLL1FRACR = 0x34
	regPLL2DIVR  = 0x38
	regPLL2FRACR = 0x3C
	regPLL3DIVR  = 0x40
	regPLL3FRACR = 0x44
	regD1CCIPR   = 0x4C // per_ck source

	// --- CR bits ---

	crHSION  = 1 << 0
	crHSIRDY = 1 << 2
	crHSEON  = 1 << 16
	crHSERDY = 1 << 17
	crHSEBYP = 1 << 18

	// PLL1/2/3 ON and RDY bits; per unit stride of 2 from PLL1ON.
	crPLL1ON  = 1 << 24
	crPLL1RDY = 1 << 25

	// --- CFGR fields ---

	cfgrSWPos   = 0
	cfgrSWMask  = 0x7
	cfgrSWSPos  = 3
	cfgrSWSMask = 0x7

	swHSI  = 0
	swCSI  = 1
	swHSE  = 2
	swPLL1 = 3

	cfgrMCO2Pos     = 29
	cfgrMCO2Mask    = 0x7
	cfgrMCO2PrePos  = 25
	cfgrMCO2PreMask = 0xF

	mco2SysCk = 0
	mco2Pll1P = 3

	// --- Domain prescaler fields ---

	d1cfgrHPREPos    = 0
	d1cfgrHPREMask   = 0xF
	d1cfgrD1PPREPos  = 4
	d1cfgrD1PPREMask = 0x7
	d2cfgrPPRE1Pos   = 4
	d2cfgrPPRE1Mask  = 0x7
	d2cfgrPPRE2Pos   = 8
	d2cfgrPPRE2Mask  = 0x7
	d3cfgrPPREPos    = 4
	d3cfgrPPREMask   = 0x7

	// --- PLLCKSELR fields ---

	pllckselrSRCPos  = 0
	pllckselrSRCMask = 0x3
	pllsrcHSI        = 0
	pllsrcCSI        = 1
	pllsrcHSE        = 2

	// DIVM1 at bit 4, DIVM2 at 12, DIVM3 at 20 (6-bit fields).
	pllckselrDIVM1Pos = 4
	pllckselrDIVMMask = 0x3F

	// --- PLLCFGR fields ---
	// Per-unit config nibble: FRACEN, VCOSEL, RGE[1:0]; PLL1 at bit 0,
	// PLL2 at bit 4, PLL3 at bit 8.

	pllcfgrFRACEN = 1 << 0
	pllcfgrVCOSEL = 1 << 1 // 1 = medium VCO (VCOL)
	pllcfgrRGEPos = 2

	// Output enables: DIVP1EN at bit 16, then Q1, R1, P2, Q2, R2, P3, Q3, R3.
	pllcfgrDIVP1ENPos = 16

	// --- PLLxDIVR fields (stored value = divider - 1) ---

	divrNPos  = 0
	divrNMask = 0x1FF
	divrPPos  = 9
	divrPMask = 0x7F
	divrQPos  = 16
	divrQMask = 0x7F
	divrRPos  = 24
	divrRMask = 0x7F

	// --- PLLxFRACR ---

	fracrPos  = 3
	fracrMask = 0x1FFF

	// --- D1CCIPR fields ---

	d1ciprCKPERSELPos  = 28
	d1ciprCKPERSELMask = 0x3
	ckperHSI           = 0
	ckperCSI           = 1
	ckperHSE           = 2
)

// PFD input range encodings for the per-unit RGE field.
const (
	rgeRange1 = 0 // 1 - 2 MHz
	rgeRange2 = 1 // 2 - 4 MHz
	rgeRange4 = 2 // 4 - 8 MHz
	rgeRange8 = 3 // 8 - 16 MHz
)
