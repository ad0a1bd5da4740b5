package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
)

func TestInitWritesToFile(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "logs", "app.log")

	err := Init(&LogConfig{Level: "debug", Filename: file, MaxSize: 1, MaxAge: 1, MaxBackups: 1}, "production")
	if err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	defer func() { Lg = zap.NewNop() }()

	Info("call answered", zap.String("callSid", "CA123"))
	Sync()

	data, err := os.ReadFile(file)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(data), "CA123") {
		t.Errorf("expected log file to contain callSid, got %q", string(data))
	}
}

func TestInitInvalidLevelFallsBackToInfo(t *testing.T) {
	if err := Init(&LogConfig{Level: "chatty"}, "development"); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	defer func() { Lg = zap.NewNop() }()

	if Lg.Core().Enabled(zap.DebugLevel) {
		t.Error("debug should be disabled when the level cannot be parsed")
	}
	if !Lg.Core().Enabled(zap.InfoLevel) {
		t.Error("info should be enabled")
	}
}
