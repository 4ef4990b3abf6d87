package input

import (
	"context"
	"fmt"
	"strconv"

	"glbridge/internal/metrics"

	"go.uber.org/zap"
)

// Button ids as the module sees them.
type Button uint8

const (
	ButtonPrimary   Button = 0
	ButtonAuxiliary Button = 1 // middle
	ButtonSecondary Button = 2 // right
)

func (b Button) String() string { return strconv.Itoa(int(b)) }

// EventKind is the kind of pointer event delivered by the host.
type EventKind int

const (
	EventClick EventKind = iota
	EventAuxClick
	EventContextMenu
	EventMove
	EventEnter
	EventLeave
)

func (k EventKind) String() string {
	switch k {
	case EventClick:
		return "click"
	case EventAuxClick:
		return "auxclick"
	case EventContextMenu:
		return "contextmenu"
	case EventMove:
		return "move"
	case EventEnter:
		return "enter"
	case EventLeave:
		return "leave"
	}
	return fmt.Sprintf("EventKind(%d)", int(k))
}

// Event is one pointer event in surface pixel coordinates.
type Event struct {
	Kind   EventKind
	X, Y   float64
	Button Button
}

// Clicker is the module's click entry point.
type Clicker interface {
	Click(ctx context.Context, x, y int32, button uint8) error
}

// MouseState is the last known pointer state. The bridge itself only
// forwards discrete clicks; this is kept for host-side consumers.
type MouseState struct {
	X, Y   float64
	Inside bool
}

// Translator turns pointer events into module click calls. Handlers run one
// at a time on the event thread.
type Translator struct {
	clicker          Clicker
	contextMenuClick bool
	mouse            MouseState
	metrics          *metrics.Metrics
	log              *zap.Logger
}

// NewTranslator creates a translator. With contextMenuClick set, a
// context-menu event is also delivered to the module as a click, in addition
// to being suppressed. A right-click then reaches the module twice: once from
// the context menu and once from the auxiliary click.
func NewTranslator(c Clicker, contextMenuClick bool, m *metrics.Metrics, log *zap.Logger) *Translator {
	return &Translator{
		clicker:          c,
		contextMenuClick: contextMenuClick,
		metrics:          m,
		log:              log.Named("input"),
	}
}

// Handle processes one event and reports whether the host's default action
// must be suppressed.
func (t *Translator) Handle(ctx context.Context, ev Event) (preventDefault bool) {
	switch ev.Kind {
	case EventClick:
		t.dispatch(ctx, ev)
		return false
	case EventAuxClick:
		// no middle-click navigation
		t.dispatch(ctx, ev)
		return true
	case EventContextMenu:
		if t.contextMenuClick {
			t.dispatch(ctx, ev)
		}
		return true
	case EventMove:
		t.mouse.X, t.mouse.Y = ev.X, ev.Y
		t.mouse.Inside = true
	case EventEnter:
		t.mouse.Inside = true
	case EventLeave:
		t.mouse.Inside = false
	}
	return false
}

// Mouse returns the last known pointer state.
func (t *Translator) Mouse() MouseState { return t.mouse }

func (t *Translator) dispatch(ctx context.Context, ev Event) {
	x, y := int32(ev.X), int32(ev.Y)
	t.metrics.Clicks.WithLabelValues(ev.Button.String()).Inc()
	if err := t.clicker.Click(ctx, x, y, uint8(ev.Button)); err != nil {
		t.metrics.ClickErrors.Inc()
		t.log.Error("module click failed",
			zap.Stringer("event", ev.Kind),
			zap.Int32("x", x),
			zap.Int32("y", y),
			zap.Uint8("button", uint8(ev.Button)),
			zap.Error(err))
	}
}
