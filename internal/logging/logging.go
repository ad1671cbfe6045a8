// Package logging builds the root zerolog logger from config.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/goliatone/go-formwizard/internal/config"
)

// New returns a timestamped logger writing to out (stderr when nil), as
// JSON or through zerolog's console writer.
func New(cfg config.LogConfig, out io.Writer) (zerolog.Logger, error) {
	if out == nil {
		out = os.Stderr
	}
	level := zerolog.InfoLevel
	if raw := strings.TrimSpace(cfg.Level); raw != "" {
		parsed, err := zerolog.ParseLevel(strings.ToLower(raw))
		if err != nil {
			return zerolog.Nop(), fmt.Errorf("logging: %w", err)
		}
		level = parsed
	}

	writer := out
	if !strings.EqualFold(cfg.Format, "json") {
		writer = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}
	return zerolog.New(writer).Level(level).With().Timestamp().Logger(), nil
}
