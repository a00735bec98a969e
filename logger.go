package longview

import (
	"log/slog"

	"github.com/agiangrant/longview/internal/diag"
)

// SetLogger configures the logger used by longview and its subpackages.
// By default nothing is logged. Pass nil to restore the silent default.
//
// Levels used:
//   - [slog.LevelDebug]: region updates and decoder details
//   - [slog.LevelInfo]: attach, measure and loop lifecycle
//   - [slog.LevelWarn]: per-frame decode and paint failures, stream close errors
//
// SetLogger is safe for concurrent use.
func SetLogger(l *slog.Logger) {
	diag.SetLogger(l)
}

// Logger returns the current logger.
func Logger() *slog.Logger {
	return diag.Logger()
}
