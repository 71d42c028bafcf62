package dsp

import "math"

// CosSum modifies the buffer to conform to a cosine sum window
// following a0.
func CosSum(buf []float64, a0 float64) {
	a1 := 1.0 - a0
	coef := 2.0 * math.Pi / float64(len(buf))
	for n := range buf {
		buf[n] *= a0 - a1*math.Cos(coef*float64(n))
	}
}

// Hann modifies the buffer to a Hann window.
func Hann(buf []float64) {
	CosSum(buf, 0.5)
}

// Hamming modifies the buffer to a Hamming window.
func Hamming(buf []float64) {
	CosSum(buf, 25.0/46.0)
}
