//go:build unit || !integration

package logger

import (
	"context"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
)

func TestConfigureLogging(t *testing.T) {
	oldLogger := log.Logger
	oldContextLogger := zerolog.DefaultContextLogger

	t.Cleanup(func() {
		log.Logger = oldLogger
		zerolog.DefaultContextLogger = oldContextLogger
	})

	var logging strings.Builder
	configureLogging(func(w *zerolog.ConsoleWriter) {
		w.Out = &logging
		w.NoColor = true
	})

	log.Error().Str("Cause", "testing error logging").Msg("testing message")

	actual := logging.String()
	t.Log(actual)

	assert.Contains(t, actual, "testing message", "Log statement doesn't contain the log message")
	assert.Contains(t, actual, "testing error logging", "Log statement doesn't contain the logged cause")
	assert.Contains(t, actual, "pkg/logger/logger_test.go", "Log statement doesn't contain the caller path")
}

func TestContextWithTaskIDLogger(t *testing.T) {
	oldLogger := log.Logger
	oldContextLogger := zerolog.DefaultContextLogger

	t.Cleanup(func() {
		log.Logger = oldLogger
		zerolog.DefaultContextLogger = oldContextLogger
	})

	var logging strings.Builder
	configureLogging(func(w *zerolog.ConsoleWriter) {
		w.Out = &logging
		w.NoColor = true
	})

	ctx := ContextWithTaskIDLogger(context.Background(), "42")
	log.Ctx(ctx).Info().Msg("task scoped line")

	assert.Contains(t, logging.String(), "42", "Log statement doesn't carry the task id")
}
