package main

import (
	"path/filepath"
	"testing"

	"go.uber.org/zap/zapcore"

	"sterling/internal/config"
)

func TestInitializeLogger(t *testing.T) {
	tests := []struct {
		name      string
		level     string
		override  string
		format    string
		wantLevel zapcore.Level
		wantErr   bool
	}{
		{"Defaults to info", "", "", "", zapcore.InfoLevel, false},
		{"Configured debug", "debug", "", "console", zapcore.DebugLevel, false},
		{"Override wins", "info", "error", "json", zapcore.ErrorLevel, false},
		{"Warning alias", "warning", "", "json", zapcore.WarnLevel, false},
		{"Invalid level", "loud", "", "json", 0, true},
		{"Invalid format", "info", "", "xml", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, err := initializeLogger(config.LoggingConfig{Level: tt.level, Format: tt.format}, tt.override)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected an error")
				}
				return
			}
			if err != nil {
				t.Fatalf("initializeLogger failed: %v", err)
			}
			if !logger.Core().Enabled(tt.wantLevel) {
				t.Errorf("expected level %s to be enabled", tt.wantLevel)
			}
			if tt.wantLevel > zapcore.DebugLevel && logger.Core().Enabled(tt.wantLevel-1) {
				t.Errorf("expected level below %s to be disabled", tt.wantLevel)
			}
		})
	}
}

func TestInitializeLoggerOutputFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "sterling.log")
	logger, err := initializeLogger(config.LoggingConfig{Level: "info", Format: "json", OutputFile: path}, "")
	if err != nil {
		t.Fatalf("initializeLogger failed: %v", err)
	}
	logger.Info("started")
	_ = logger.Sync()
}
