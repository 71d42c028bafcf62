package dsp

import (
	"math"

	"gonum.org/v1/gonum/dsp/fourier"
)

// Spectrum converts a time-domain window into frequency magnitudes.
// One instance serves one capture buffer size; it reuses its plan and
// scratch space across calls.
type Spectrum struct {
	fft    *fourier.FFT
	coefs  []complex128
	scaled []float64
}

// NewSpectrum builds a spectrum transform for windows of size samples.
func NewSpectrum(size int) *Spectrum {
	return &Spectrum{
		fft:    fourier.NewFFT(size),
		coefs:  make([]complex128, size/2+1),
		scaled: make([]float64, size),
	}
}

// Magnitudes writes the Hann-windowed frequency magnitudes of src into
// the head of dst and zeroes the remainder.
func (sp *Spectrum) Magnitudes(dst, src []float64) {
	copy(sp.scaled, src)
	Hann(sp.scaled)

	sp.fft.Coefficients(sp.coefs, sp.scaled)

	n := len(sp.coefs)
	if n > len(dst) {
		n = len(dst)
	}

	for i := 0; i < n; i++ {
		dst[i] = math.Hypot(real(sp.coefs[i]), imag(sp.coefs[i]))
	}
	for i := n; i < len(dst); i++ {
		dst[i] = 0
	}
}
