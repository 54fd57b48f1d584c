package hue

// KelvinToMirek converts a colour temperature in kelvin to mirek, truncating
// the result. Non-positive input returns 0.
func KelvinToMirek(kelvin int) int {
	if kelvin <= 0 {
		return 0
	}
	return int(1_000_000.0 / float64(kelvin))
}

// MirekToKelvin converts mirek to kelvin, truncating the result. Non-positive
// input returns 0.
func MirekToKelvin(mirek int) int {
	if mirek <= 0 {
		return 0
	}
	return int(1_000_000.0 / float64(mirek))
}

// XY is a colour in CIE 1931 xy chromaticity coordinates.
type XY struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// XYFromRGB converts linear RGB components in [0, 1] to xy chromaticity.
// Black has no chromaticity and maps to the D65 white point.
func XYFromRGB(r, g, b float64) XY {
	x := 0.412453*r + 0.357580*g + 0.180423*b
	y := 0.212671*r + 0.715160*g + 0.072169*b
	z := 0.019334*r + 0.119193*g + 0.950227*b

	sum := x + y + z
	if sum == 0 {
		return XY{X: 0.3127, Y: 0.3290}
	}
	return XY{X: x / sum, Y: y / sum}
}
