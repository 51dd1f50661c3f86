package platform

import (
	"testing"

	"github.com/go-gl/glfw/v3.3/glfw"
)

func TestInputKeyEdges(t *testing.T) {
	in := NewInput()

	in.ProcessKey(glfw.KeySpace, true)
	if !in.KeyPressed(glfw.KeySpace) {
		t.Error("expected KeyPressed on the tick the key went down")
	}

	in.Update()
	if in.KeyPressed(glfw.KeySpace) {
		t.Error("KeyPressed must only report the first tick")
	}
	if !in.IsKeyDown(glfw.KeySpace) {
		t.Error("key should still be down")
	}

	in.ProcessKey(glfw.KeySpace, false)
	if !in.KeyReleased(glfw.KeySpace) {
		t.Error("expected KeyReleased")
	}
}

func TestInputMouse(t *testing.T) {
	in := NewInput()
	in.ProcessMouseMove(10, 20)
	in.ProcessMouseWheel(1)
	in.ProcessMouseWheel(0.5)
	in.ProcessButton(glfw.MouseButtonLeft, true)

	if x, y := in.MousePosition(); x != 10 || y != 20 {
		t.Errorf("MousePosition() = %v,%v", x, y)
	}
	if in.Scroll() != 1.5 {
		t.Errorf("Scroll() = %v, want 1.5", in.Scroll())
	}
	if !in.ButtonPressed(glfw.MouseButtonLeft) {
		t.Error("expected ButtonPressed")
	}

	in.Update()
	in.ProcessMouseMove(15, 25)
	if x, y := in.PreviousMousePosition(); x != 10 || y != 20 {
		t.Errorf("PreviousMousePosition() = %v,%v", x, y)
	}
	if in.Scroll() != 0 {
		t.Errorf("Scroll() after Update = %v, want 0", in.Scroll())
	}
	if in.ButtonPressed(glfw.MouseButtonLeft) {
		t.Error("ButtonPressed must only report the first tick")
	}
}
