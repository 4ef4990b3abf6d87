package input_test

import (
	"context"
	"errors"
	"testing"

	"glbridge/internal/input"
	"glbridge/internal/metrics"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type click struct {
	x, y   int32
	button uint8
}

type recordingClicker struct {
	clicks []click
	err    error
}

func (c *recordingClicker) Click(_ context.Context, x, y int32, button uint8) error {
	c.clicks = append(c.clicks, click{x, y, button})
	return c.err
}

func newTranslator(t *testing.T, contextMenuClick bool) (*input.Translator, *recordingClicker, *metrics.Metrics) {
	c := &recordingClicker{}
	m := metrics.Discard()
	return input.NewTranslator(c, contextMenuClick, m, zaptest.NewLogger(t)), c, m
}

func TestPrimaryClick(t *testing.T) {
	tr, c, m := newTranslator(t, false)

	prevent := tr.Handle(context.Background(), input.Event{Kind: input.EventClick, X: 42, Y: 17, Button: input.ButtonPrimary})

	assert.False(t, prevent)
	require.Len(t, c.clicks, 1)
	assert.Equal(t, click{42, 17, 0}, c.clicks[0])
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Clicks.WithLabelValues("0")))
}

func TestFractionalCoordinatesTruncate(t *testing.T) {
	tr, c, _ := newTranslator(t, false)
	tr.Handle(context.Background(), input.Event{Kind: input.EventClick, X: 42.9, Y: 17.2})
	assert.Equal(t, click{42, 17, 0}, c.clicks[0])
}

func TestAuxClickSuppressesDefault(t *testing.T) {
	tr, c, _ := newTranslator(t, false)

	prevent := tr.Handle(context.Background(), input.Event{Kind: input.EventAuxClick, X: 5, Y: 6, Button: input.ButtonAuxiliary})

	assert.True(t, prevent)
	assert.Equal(t, []click{{5, 6, 1}}, c.clicks)
}

// A right-click produces a context-menu event and an auxiliary click. The
// native menu is always suppressed; whether the module hears the click once
// or twice depends on whether the context menu is routed through the click
// handler.
func TestRightClickContextMenu(t *testing.T) {
	rightClick := []input.Event{
		{Kind: input.EventContextMenu, X: 10, Y: 20, Button: input.ButtonSecondary},
		{Kind: input.EventAuxClick, X: 10, Y: 20, Button: input.ButtonSecondary},
	}

	tests := []struct {
		name             string
		contextMenuClick bool
		wantClicks       int
	}{
		{"suppress only", false, 1},
		{"suppress and dispatch", true, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr, c, _ := newTranslator(t, tt.contextMenuClick)

			for _, ev := range rightClick {
				prevent := tr.Handle(context.Background(), ev)
				assert.True(t, prevent, "%s must not reach the native handler", ev.Kind)
			}

			require.Len(t, c.clicks, tt.wantClicks)
			for _, got := range c.clicks {
				assert.Equal(t, click{10, 20, 2}, got)
			}
		})
	}
}

func TestContextMenuAloneNeverOpensMenu(t *testing.T) {
	for _, dispatch := range []bool{false, true} {
		tr, _, _ := newTranslator(t, dispatch)
		assert.True(t, tr.Handle(context.Background(), input.Event{Kind: input.EventContextMenu, Button: input.ButtonSecondary}))
	}
}

func TestMoveAndLeaveDoNotCallModule(t *testing.T) {
	tr, c, _ := newTranslator(t, true)
	ctx := context.Background()

	assert.False(t, tr.Mouse().Inside)

	tr.Handle(ctx, input.Event{Kind: input.EventMove, X: 3, Y: 4})
	assert.Equal(t, input.MouseState{X: 3, Y: 4, Inside: true}, tr.Mouse())

	tr.Handle(ctx, input.Event{Kind: input.EventLeave})
	assert.Equal(t, input.MouseState{X: 3, Y: 4, Inside: false}, tr.Mouse())

	tr.Handle(ctx, input.Event{Kind: input.EventEnter})
	assert.True(t, tr.Mouse().Inside)

	assert.Empty(t, c.clicks)
}

func TestClickErrorIsCountedNotFatal(t *testing.T) {
	tr, c, m := newTranslator(t, false)
	c.err = errors.New("unreachable")

	tr.Handle(context.Background(), input.Event{Kind: input.EventClick, X: 1, Y: 1})
	tr.Handle(context.Background(), input.Event{Kind: input.EventClick, X: 2, Y: 2})

	assert.Len(t, c.clicks, 2)
	assert.Equal(t, 2.0, testutil.ToFloat64(m.ClickErrors))
}

func TestEventKindString(t *testing.T) {
	assert.Equal(t, "contextmenu", input.EventContextMenu.String())
	assert.Equal(t, "EventKind(99)", input.EventKind(99).String())
}
