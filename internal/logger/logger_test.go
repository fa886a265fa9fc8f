package logger

import (
	"os"
	"path/filepath"
	"testing"
)

func TestNew_Development(t *testing.T) {
	l, err := New("development", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !l.Desugar().Core().Enabled(-1) {
		t.Fatal("development logger should enable debug")
	}
}

func TestNew_ProductionSkipsDebug(t *testing.T) {
	l, err := New(ModeProduction, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if l.Desugar().Core().Enabled(-1) {
		t.Fatal("production logger should not enable debug")
	}
}

func TestNew_WritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pos.log")
	l, err := New(ModeProduction, path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	l.Infow("order placed", "order_id", "ORD-000001")
	_ = l.Sync()

	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if len(b) == 0 {
		t.Fatal("expected log output in file")
	}
}
