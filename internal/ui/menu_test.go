package ui

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"bist-cli/internal/config"
	"bist-cli/internal/logger"
)

func testApp(in io.Reader) (*App, *bytes.Buffer) {
	out := &bytes.Buffer{}
	app := NewApp(config.Default(), logger.New(io.Discard, logger.Options{Level: "ERROR"}),
		nil, nil, nil, nil, in, out)
	app.viewDelay = 0
	return app, out
}

// blockingReader never delivers input, like a terminal nobody types into.
type blockingReader struct{}

func (blockingReader) Read([]byte) (int, error) {
	select {}
}

func TestLiveViewStopsOnEnter(t *testing.T) {
	app, out := testApp(strings.NewReader("\n"))

	var streamCancelled bool
	app.liveView(context.Background(), func(ctx context.Context) error {
		<-ctx.Done()
		streamCancelled = true
		return ctx.Err()
	})

	assert.True(t, streamCancelled)
	assert.Contains(t, out.String(), "stream stopped")
}

func TestLiveViewStopsOnContextCancel(t *testing.T) {
	app, out := testApp(blockingReader{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	returned := make(chan struct{})
	go func() {
		defer close(returned)
		app.liveView(ctx, func(ctx context.Context) error {
			<-ctx.Done()
			return ctx.Err()
		})
	}()

	select {
	case <-returned:
	case <-time.After(2 * time.Second):
		t.Fatal("liveView did not return after context cancellation")
	}
	assert.Contains(t, out.String(), "stream stopped")
}

// After cancellation no menu may prompt again: a line read left pending by
// a live view would otherwise swallow the next answer.
func TestMenusReturnOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	for name, call := range map[string]func(*App){
		"market":    func(a *App) { a.marketMenu(ctx) },
		"settings":  func(a *App) { a.settingsMenu(ctx) },
		"watchlist": func(a *App) { a.watchlistMenu(ctx) },
	} {
		app, out := testApp(strings.NewReader("1\n"))
		call(app)
		assert.Zero(t, out.Len(), "%s menu prompted after cancellation", name)
	}
}
