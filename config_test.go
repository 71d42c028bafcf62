package oscope

import "testing"

func TestSanitizeDefaults(t *testing.T) {
	cfg := NewZeroConfig()
	if err := cfg.Sanitize(); err != nil {
		t.Fatalf("Sanitize: %v", err)
	}

	if cfg.FrameRate != 10 || cfg.CaptureSize != 2048 {
		t.Fatalf("defaults mangled: %+v", cfg)
	}
}

func TestSanitizeRejectsBadCaptureSize(t *testing.T) {
	cfg := NewZeroConfig()
	cfg.CaptureSize = 1000

	if err := cfg.Sanitize(); err == nil {
		t.Fatal("accepted a non-power-of-two capture size")
	}
}

func TestSanitizeClampsZoom(t *testing.T) {
	cfg := NewZeroConfig()
	cfg.ZoomSlider = 500

	if err := cfg.Sanitize(); err != nil {
		t.Fatalf("Sanitize: %v", err)
	}
	if cfg.ZoomSlider != 99 {
		t.Fatalf("slider = %v, want clamped to 99", cfg.ZoomSlider)
	}
}

func TestSanitizeRejectsEmptySignal(t *testing.T) {
	cfg := NewZeroConfig()
	cfg.Signal = ""

	if err := cfg.Sanitize(); err == nil {
		t.Fatal("accepted empty signal name")
	}
}
