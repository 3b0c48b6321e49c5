package gpu

import (
	"errors"
	"strings"
	"testing"
)

func TestNewNilDevice(t *testing.T) {
	if _, err := New(nil, nil); !errors.Is(err, ErrNoDevice) {
		t.Errorf("New(nil, nil) = %v, want ErrNoDevice", err)
	}
}

func TestNewFromProviderRejectsPlainValue(t *testing.T) {
	if _, err := NewFromProvider(42); !errors.Is(err, ErrNoDevice) {
		t.Errorf("NewFromProvider(42) = %v, want ErrNoDevice", err)
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.MaxRects <= 0 || cfg.ReadbackTimeout <= 0 {
		t.Errorf("DefaultConfig() = %+v, want positive fields", cfg)
	}
}

func TestShaderSource(t *testing.T) {
	src := ShaderSource()
	if !strings.Contains(src, "vs_main") || !strings.Contains(src, "fs_main") {
		t.Error("shader source missing entry points")
	}
}
