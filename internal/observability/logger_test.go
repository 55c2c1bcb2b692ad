package observability

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/couchcryptid/house-energy-service/internal/config"
)

func TestNewLogger(t *testing.T) {
	tests := []struct {
		name    string
		level   string
		enabled slog.Level
		muted   slog.Level
	}{
		{"warn", "warn", slog.LevelWarn, slog.LevelInfo},
		{"debug", "DEBUG", slog.LevelDebug, slog.LevelDebug - 4},
		{"unknown defaults to info", "nonsense", slog.LevelInfo, slog.LevelDebug},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger := NewLogger(&config.Config{LogLevel: tt.level, LogFormat: "text"})
			t.Cleanup(func() { slog.SetDefault(slog.New(slog.DiscardHandler)) })

			assert.True(t, logger.Enabled(t.Context(), tt.enabled))
			assert.False(t, logger.Enabled(t.Context(), tt.muted))
			assert.Same(t, logger.Handler(), slog.Default().Handler(), "installed as default")
		})
	}
}
