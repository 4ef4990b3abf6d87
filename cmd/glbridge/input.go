package main

import (
	"context"

	"glbridge/internal/app"
	"glbridge/internal/input"
	"glbridge/internal/surface"

	"github.com/go-gl/glfw/v3.3/glfw"
)

// buttons maps glfw buttons to pointer button numbers.
var buttons = map[glfw.MouseButton]input.Button{
	glfw.MouseButtonLeft:   input.ButtonPrimary,
	glfw.MouseButtonMiddle: input.ButtonAuxiliary,
	glfw.MouseButtonRight:  input.ButtonSecondary,
}

// setupInputHandlers turns glfw callbacks into pointer events. A right
// press raises the context menu event and its release the auxclick, the
// order a browser uses. There is no native menu to suppress, so the
// preventDefault result is only informative here.
func setupInputHandlers(ctx context.Context, window *glfw.Window, s surface.Surface, a *app.App, capturePath string) {
	cursor := func(w *glfw.Window) (float64, float64) {
		return s.FromWindow(w.GetCursorPos())
	}

	window.SetMouseButtonCallback(func(w *glfw.Window, button glfw.MouseButton, action glfw.Action, mods glfw.ModifierKey) {
		b, ok := buttons[button]
		if !ok {
			return
		}
		x, y := cursor(w)
		ev := input.Event{X: x, Y: y, Button: b}
		switch {
		case action == glfw.Press && b == input.ButtonSecondary:
			ev.Kind = input.EventContextMenu
		case action != glfw.Release:
			return
		case b == input.ButtonPrimary:
			ev.Kind = input.EventClick
		default:
			ev.Kind = input.EventAuxClick
		}
		a.HandleInput(ctx, ev)
	})

	window.SetCursorPosCallback(func(w *glfw.Window, xpos, ypos float64) {
		// glfw keeps reporting positions outside the window while a button
		// is held.
		x, y := s.FromWindow(xpos, ypos)
		kind := input.EventMove
		if !s.Contains(x, y) {
			kind = input.EventLeave
		}
		a.HandleInput(ctx, input.Event{Kind: kind, X: x, Y: y})
	})

	window.SetCursorEnterCallback(func(w *glfw.Window, entered bool) {
		x, y := cursor(w)
		kind := input.EventLeave
		if entered {
			kind = input.EventEnter
		}
		a.HandleInput(ctx, input.Event{Kind: kind, X: x, Y: y})
	})

	window.SetKeyCallback(func(w *glfw.Window, key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
		if action != glfw.Press {
			return
		}
		switch key {
		case glfw.KeyF2:
			a.RequestCapture(capturePath)
		case glfw.KeyEscape:
			w.SetShouldClose(true)
		}
	})
}
