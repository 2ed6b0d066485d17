package input

import (
	"testing"

	"github.com/veandco/go-sdl2/sdl"
)

func keyDown(code sdl.Scancode) *sdl.KeyboardEvent {
	return &sdl.KeyboardEvent{Type: sdl.KEYDOWN, Keysym: sdl.Keysym{Scancode: code}}
}

func keyUp(code sdl.Scancode) *sdl.KeyboardEvent {
	return &sdl.KeyboardEvent{Type: sdl.KEYUP, Keysym: sdl.Keysym{Scancode: code}}
}

func TestInput_QuitEvents(t *testing.T) {
	tests := []struct {
		name  string
		event sdl.Event
	}{
		{"window close", &sdl.QuitEvent{Type: sdl.QUIT}},
		{"escape", keyDown(sdl.SCANCODE_ESCAPE)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := New()
			in.handle(tt.event)
			if !in.frame.Quit {
				t.Error("Quit = false")
			}
		})
	}
}

func TestInput_Resize(t *testing.T) {
	in := New()
	in.handle(&sdl.WindowEvent{Type: sdl.WINDOWEVENT, Event: sdl.WINDOWEVENT_SIZE_CHANGED, Data1: 800, Data2: 600})
	if !in.frame.Resized || in.frame.Width != 800 || in.frame.Height != 600 {
		t.Errorf("frame = %+v", in.frame)
	}
}

func TestInput_Actions(t *testing.T) {
	in := New()
	in.handle(keyDown(sdl.SCANCODE_R))
	in.handle(keyUp(sdl.SCANCODE_R))
	in.handle(keyDown(sdl.SCANCODE_SPACE))
	repeat := keyDown(sdl.SCANCODE_SPACE)
	repeat.Repeat = 1
	in.handle(repeat)
	in.handle(keyDown(sdl.SCANCODE_HOME))
	in.handle(keyDown(sdl.SCANCODE_F12))

	want := []Action{ActionTogglePolyReduction, ActionToggleOrbit, ActionResetCamera, ActionScreenshot}
	if len(in.frame.Actions) != len(want) {
		t.Fatalf("Actions = %v, want %v", in.frame.Actions, want)
	}
	for i := range want {
		if in.frame.Actions[i] != want[i] {
			t.Errorf("Actions[%d] = %v, want %v", i, in.frame.Actions[i], want[i])
		}
	}

	in.reset()
	if len(in.frame.Actions) != 0 {
		t.Errorf("reset kept actions: %v", in.frame.Actions)
	}
}

func TestInput_DragOnlyWithButtonHeld(t *testing.T) {
	in := New()
	in.handle(&sdl.MouseMotionEvent{Type: sdl.MOUSEMOTION, XRel: 5, YRel: 5})
	if in.frame.DragX != 0 || in.frame.DragY != 0 {
		t.Errorf("drag without button = %v, %v", in.frame.DragX, in.frame.DragY)
	}

	in.handle(&sdl.MouseButtonEvent{Type: sdl.MOUSEBUTTONDOWN, Button: sdl.BUTTON_LEFT})
	in.handle(&sdl.MouseMotionEvent{Type: sdl.MOUSEMOTION, XRel: 3, YRel: -2})
	in.handle(&sdl.MouseMotionEvent{Type: sdl.MOUSEMOTION, XRel: 1, YRel: -1})
	in.handle(&sdl.MouseButtonEvent{Type: sdl.MOUSEBUTTONUP, Button: sdl.BUTTON_LEFT})
	in.handle(&sdl.MouseMotionEvent{Type: sdl.MOUSEMOTION, XRel: 10, YRel: 10})

	if in.frame.DragX != 4 || in.frame.DragY != -3 {
		t.Errorf("drag = %v, %v, want 4, -3", in.frame.DragX, in.frame.DragY)
	}
}

func TestInput_WheelAccumulates(t *testing.T) {
	in := New()
	in.handle(&sdl.MouseWheelEvent{Type: sdl.MOUSEWHEEL, Y: 1})
	in.handle(&sdl.MouseWheelEvent{Type: sdl.MOUSEWHEEL, Y: 2})
	if in.frame.Wheel != 3 {
		t.Errorf("Wheel = %v, want 3", in.frame.Wheel)
	}
}

func TestInput_Movement(t *testing.T) {
	in := New()
	in.handle(keyDown(sdl.SCANCODE_W))
	in.handle(keyDown(sdl.SCANCODE_LEFT))
	if f, r := in.Movement(); f != 1 || r != -1 {
		t.Errorf("Movement() = %v, %v, want 1, -1", f, r)
	}
	if !in.IsKeyHeld(sdl.SCANCODE_W) {
		t.Error("IsKeyHeld(W) = false")
	}

	in.handle(keyUp(sdl.SCANCODE_W))
	in.handle(keyDown(sdl.SCANCODE_S))
	if f, _ := in.Movement(); f != -1 {
		t.Errorf("forward = %v, want -1", f)
	}
}
