package dsp

import (
	"math"
	"testing"
)

func TestDownsamplerStride(t *testing.T) {
	ds := NewDownsampler(DownsamplerConfig{
		CaptureSize: 2048,
		Width:       600,
		Height:      100,
		YPad:        2,
	})

	if ds.Step() != 3 {
		t.Fatalf("step = %d, want 3", ds.Step())
	}
}

func TestDownsamplerFill(t *testing.T) {
	const (
		capture = 2048
		width   = 600
		height  = 100
		pad     = 2
	)

	src := make([]float64, capture)
	for i := range src {
		src[i] = math.Sin(float64(i) / 64.0)
	}

	ds := NewDownsampler(DownsamplerConfig{
		CaptureSize: capture,
		Width:       width,
		Height:      height,
		YPad:        pad,
	})

	dst := make([]int, width)
	ds.Fill(dst, src)

	scale := float64(height - 2*pad)
	for x := 0; x < width; x++ {
		want := int(src[x*3] * scale)
		if dst[x] != want {
			t.Fatalf("dst[%d] = %d, want %d", x, dst[x], want)
		}
	}
}

func TestDownsamplerDeterministic(t *testing.T) {
	src := make([]float64, 1024)
	for i := range src {
		src[i] = float64(i%97) / 97.0
	}

	ds := NewDownsampler(DownsamplerConfig{
		CaptureSize: 1024,
		Width:       300,
		Height:      80,
		YPad:        2,
	})

	first := make([]int, 300)
	ds.Fill(first, src)

	for run := 0; run < 5; run++ {
		again := make([]int, 300)
		ds.Fill(again, src)

		for x := range first {
			if first[x] != again[x] {
				t.Fatalf("run %d: dst[%d] = %d, want %d", run, x, again[x], first[x])
			}
		}
	}
}

func TestDownsamplerShortSource(t *testing.T) {
	ds := NewDownsampler(DownsamplerConfig{
		CaptureSize: 64,
		Width:       128,
		Height:      50,
		YPad:        2,
	})

	if ds.Step() != 1 {
		t.Fatalf("step = %d, want 1", ds.Step())
	}

	src := make([]float64, 64)
	for i := range src {
		src[i] = 1.0
	}

	dst := make([]int, 128)
	ds.Fill(dst, src)

	// Columns past the source keep their previous content.
	for x := 64; x < 128; x++ {
		if dst[x] != 0 {
			t.Fatalf("dst[%d] = %d, want untouched 0", x, dst[x])
		}
	}
}
