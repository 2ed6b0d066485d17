// Package input translates SDL2 events into viewer controls.
package input

import (
	"github.com/veandco/go-sdl2/sdl"
)

// Action is a discrete viewer command triggered by a key press.
type Action int

const (
	ActionNone Action = iota
	ActionTogglePolyReduction
	ActionToggleOrbit
	ActionResetCamera
	ActionScreenshot
)

// Frame holds the input gathered during one Update.
type Frame struct {
	Quit    bool
	Resized bool
	Width   int
	Height  int

	// Mouse drag with the left button held, in pixels.
	DragX, DragY float32
	// Wheel is the accumulated vertical scroll.
	Wheel float32

	Actions []Action
}

// Input handles all input processing.
type Input struct {
	frame    Frame
	dragging bool
	held     map[sdl.Scancode]bool
}

// New creates a new input handler.
func New() *Input {
	return &Input{
		frame: Frame{Actions: make([]Action, 0, 4)},
		held:  make(map[sdl.Scancode]bool),
	}
}

// Update polls SDL events and returns the frame they describe.
func (i *Input) Update() Frame {
	i.reset()
	for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
		i.handle(event)
	}
	return i.frame
}

func (i *Input) reset() {
	i.frame = Frame{Actions: i.frame.Actions[:0]}
}

func (i *Input) handle(event sdl.Event) {
	switch e := event.(type) {
	case *sdl.QuitEvent:
		i.frame.Quit = true

	case *sdl.WindowEvent:
		if e.Event == sdl.WINDOWEVENT_SIZE_CHANGED {
			i.frame.Resized = true
			i.frame.Width, i.frame.Height = int(e.Data1), int(e.Data2)
		}

	case *sdl.KeyboardEvent:
		code := e.Keysym.Scancode
		if e.Type == sdl.KEYUP {
			delete(i.held, code)
			return
		}
		if e.Type != sdl.KEYDOWN {
			return
		}
		i.held[code] = true
		if e.Repeat != 0 {
			return
		}
		switch code {
		case sdl.SCANCODE_ESCAPE:
			i.frame.Quit = true
		case sdl.SCANCODE_R:
			i.frame.Actions = append(i.frame.Actions, ActionTogglePolyReduction)
		case sdl.SCANCODE_SPACE:
			i.frame.Actions = append(i.frame.Actions, ActionToggleOrbit)
		case sdl.SCANCODE_HOME:
			i.frame.Actions = append(i.frame.Actions, ActionResetCamera)
		case sdl.SCANCODE_F12:
			i.frame.Actions = append(i.frame.Actions, ActionScreenshot)
		}

	case *sdl.MouseButtonEvent:
		if e.Button == sdl.BUTTON_LEFT {
			i.dragging = e.Type == sdl.MOUSEBUTTONDOWN
		}

	case *sdl.MouseMotionEvent:
		if i.dragging {
			i.frame.DragX += float32(e.XRel)
			i.frame.DragY += float32(e.YRel)
		}

	case *sdl.MouseWheelEvent:
		i.frame.Wheel += float32(e.Y)
	}
}

// IsKeyHeld reports whether a key is currently down.
func (i *Input) IsKeyHeld(scancode sdl.Scancode) bool {
	return i.held[scancode]
}

// Movement returns the forward and right pan axes from WASD and the arrow keys.
func (i *Input) Movement() (forward, right float32) {
	if i.held[sdl.SCANCODE_W] || i.held[sdl.SCANCODE_UP] {
		forward++
	}
	if i.held[sdl.SCANCODE_S] || i.held[sdl.SCANCODE_DOWN] {
		forward--
	}
	if i.held[sdl.SCANCODE_D] || i.held[sdl.SCANCODE_RIGHT] {
		right++
	}
	if i.held[sdl.SCANCODE_A] || i.held[sdl.SCANCODE_LEFT] {
		right--
	}
	return forward, right
}
