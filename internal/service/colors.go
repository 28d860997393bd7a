package service

// Tank colors are derived from pH (acidic red, neutral green, alkaline
// blue) and then shifted toward warm or cool by temperature distance
// from 25C. Matches what the dashboard renders.

var (
	colorAcidic   = [3]int{210, 74, 74}
	colorNeutral  = [3]int{88, 168, 140}
	colorAlkaline = [3]int{76, 120, 208}
	colorWarm     = [3]int{226, 124, 54}
	colorCool     = [3]int{70, 130, 210}
)

func lerp(a, b, t float64) float64 { return a + (b-a)*t }

func lerpColor(a, b [3]int, t float64) [3]int {
	return [3]int{
		int(lerp(float64(a[0]), float64(b[0]), t)),
		int(lerp(float64(a[1]), float64(b[1]), t)),
		int(lerp(float64(a[2]), float64(b[2]), t)),
	}
}

func phToColor(ph float64) [3]int {
	ph = clampFloat(ph, 0, 14)
	if ph <= 7.0 {
		return lerpColor(colorAcidic, colorNeutral, ph/7.0)
	}
	return lerpColor(colorNeutral, colorAlkaline, (ph-7.0)/7.0)
}

func tempAdjust(color [3]int, tempC float64) [3]int {
	delta := clampFloat((tempC-25.0)/20.0, -1, 1)
	if delta >= 0 {
		return lerpColor(color, colorWarm, delta*0.6)
	}
	return lerpColor(color, colorCool, -delta*0.6)
}

// colorForPHTemp returns the display color for a tank reading.
func colorForPHTemp(ph, tempC float64) []int {
	c := tempAdjust(phToColor(ph), tempC)
	return []int{c[0], c[1], c[2]}
}

func clampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
