package spectral

import "math"

// kaiserWindow generates a Kaiser window of length n with shape parameter
// beta. Matches numpy.kaiser(n, beta).
func kaiserWindow(n int, beta float64) []float64 {
	if n == 1 {
		return []float64{1.0}
	}

	window := make([]float64, n)
	denominator := besselI0(beta)
	for i := 0; i < n; i++ {
		x := 2.0*float64(i)/float64(n-1) - 1.0
		arg := beta * math.Sqrt(1.0-x*x)
		window[i] = besselI0(arg) / denominator
	}
	return window
}

// besselI0 computes the modified Bessel function of the first kind, order 0.
// Polynomial approximation from Abramowitz and Stegun.
func besselI0(x float64) float64 {
	ax := math.Abs(x)

	if ax < 3.75 {
		y := x / 3.75
		y2 := y * y
		return 1.0 + y2*(3.5156229+
			y2*(3.0899424+
				y2*(1.2067492+
					y2*(0.2659732+
						y2*(0.0360768+
							y2*0.0045813)))))
	}

	y := 3.75 / ax
	return (math.Exp(ax) / math.Sqrt(ax)) * (0.39894228 +
		y*(0.01328592+
			y*(0.00225319+
				y*(-0.00157565+
					y*(0.00916281+
						y*(-0.02057706+
							y*(0.02635537+
								y*(-0.01647633+
									y*0.00392377))))))))
}

// prevPowerOf2 returns the largest power of 2 <= n (minimum 1).
func prevPowerOf2(n int) int {
	p := 1
	for p*2 <= n {
		p *= 2
	}
	return p
}

// nextPowerOf2 returns the smallest power of 2 >= n.
func nextPowerOf2(n int) int {
	p := 1
	for p < n {
		p *= 2
	}
	return p
}
