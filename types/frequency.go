// Package types holds shared value types used across the clock tree.
package types

import "strconv"

// Hertz is an exact integer frequency. All committed clock values are
// integer hertz; floating point appears only inside search heuristics.
type Hertz uint32

// MHz returns n megahertz.
func MHz(n uint32) Hertz { return Hertz(n * 1_000_000) }

// KHz returns n kilohertz.
func KHz(n uint32) Hertz { return Hertz(n * 1_000) }

// String renders the frequency with a readable unit.
func (h Hertz) String() string {
	switch {
	case h >= 1_000_000 && h%1_000_000 == 0:
		return strconv.FormatUint(uint64(h)/1_000_000, 10) + " MHz"
	case h >= 1_000 && h%1_000 == 0:
		return strconv.FormatUint(uint64(h)/1_000, 10) + " kHz"
	default:
		return strconv.FormatUint(uint64(h), 10) + " Hz"
	}
}
