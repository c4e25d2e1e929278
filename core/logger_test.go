package core

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoggerSilentByDefault(t *testing.T) {
	SetLogger(nil)
	assert.False(t, Logger().Enabled(t.Context(), slog.LevelError))
}

func TestSetLogger(t *testing.T) {
	defer SetLogger(nil)

	var buf bytes.Buffer
	SetLogger(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	Logger().Info("scheduler started", "rate", 60)

	assert.Contains(t, buf.String(), "scheduler started")
	assert.Contains(t, buf.String(), "rate=60")
}

type fakeScreen struct {
	finalized int
}

func (f *fakeScreen) Fini() { f.finalized++ }

func TestGoRecoversAndRestoresScreen(t *testing.T) {
	saved := exit
	defer func() { exit = saved }()
	code := make(chan int, 1)
	exit = func(c int) { code <- c }

	screen := &fakeScreen{}
	SetCrashScreen(screen)

	Go(func() { panic("boom") })

	assert.Equal(t, 1, <-code)
	assert.Equal(t, 1, screen.finalized)
}

func TestHandleCrashNil(t *testing.T) {
	called := false
	saved := exit
	exit = func(int) { called = true }
	defer func() { exit = saved }()

	HandleCrash(nil)
	assert.False(t, called)
}
