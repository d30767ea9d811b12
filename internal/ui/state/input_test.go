package state

import "testing"

func TestInputEditing(t *testing.T) {
	var in Input
	in.Insert("y/")
	in.Insert("2")
	if in.Value() != "y/2" || in.Cursor() != 3 {
		t.Fatalf("unexpected value %q cursor %d", in.Value(), in.Cursor())
	}
	if !in.DeleteBackward() || in.Value() != "y/" {
		t.Fatalf("expected last rune removed, got %q", in.Value())
	}
	in.MoveStart()
	in.Insert("x")
	if in.Value() != "xy/" || in.Cursor() != 1 {
		t.Fatalf("expected insert at caret, got %q cursor %d", in.Value(), in.Cursor())
	}
	in.MoveStart()
	if in.DeleteBackward() {
		t.Fatal("backspace at start should do nothing")
	}
	in.MoveEnd()
	in.Insert(" tail")
	if !in.DeleteWordBackward() || in.Value() != "xy/ " {
		t.Fatalf("expected word removed, got %q", in.Value())
	}
	if !in.MoveLeft() || in.Cursor() != 3 {
		t.Fatalf("expected caret moved left, got %d", in.Cursor())
	}
	if !in.MoveRight() || in.MoveRight() {
		t.Fatal("caret should stop at end")
	}
}

func TestInputDrain(t *testing.T) {
	var in Input
	in.Insert("   ")
	if _, ok := in.Drain(); ok {
		t.Fatal("blank input should not drain")
	}
	if in.Value() != "   " {
		t.Fatalf("blank input should be left alone, got %q", in.Value())
	}
	in.Clear()
	in.Insert(" sensors/# ")
	value, ok := in.Drain()
	if !ok || value != " sensors/# " {
		t.Fatalf("unexpected drain %q %v", value, ok)
	}
	if in.Len() != 0 || in.Cursor() != 0 {
		t.Fatalf("expected empty buffer after drain, got %q", in.Value())
	}
}
