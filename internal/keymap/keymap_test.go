package keymap

import "testing"

func TestVirtualKeyCodeNamed(t *testing.T) {
	cases := map[string]int{
		"Backspace":  8,
		"Tab":        9,
		"Enter":      13,
		"Shift":      16,
		"Control":    17,
		"Alt":        18,
		"Escape":     27,
		"Space":      32,
		"ArrowLeft":  37,
		"ArrowUp":    38,
		"ArrowRight": 39,
		"ArrowDown":  40,
		"Delete":     46,
		"F1":         112,
		"F12":        123,
	}

	for key, want := range cases {
		if got := VirtualKeyCode(key, key); got != want {
			t.Errorf("VirtualKeyCode(%q) = %d, want %d", key, got, want)
		}
	}
}

func TestVirtualKeyCodeLetters(t *testing.T) {
	if got := VirtualKeyCode("a", "KeyA"); got != 65 {
		t.Errorf("VirtualKeyCode(a) = %d, want 65", got)
	}
	if got := VirtualKeyCode("Z", "KeyZ"); got != 90 {
		t.Errorf("VirtualKeyCode(Z) = %d, want 90", got)
	}
}

func TestVirtualKeyCodeDigitsAndSymbols(t *testing.T) {
	if got := VirtualKeyCode("5", "Digit5"); got != int('5') {
		t.Errorf("VirtualKeyCode(5) = %d, want %d", got, int('5'))
	}
	if got := VirtualKeyCode("@", "Digit2"); got != int('@') {
		t.Errorf("VirtualKeyCode(@) = %d, want %d", got, int('@'))
	}
}

func TestVirtualKeyCodeUnmapped(t *testing.T) {
	if got := VirtualKeyCode("Unidentified", "Unidentified"); got != 0 {
		t.Errorf("VirtualKeyCode(Unidentified) = %d, want 0", got)
	}
	if got := VirtualKeyCode("", ""); got != 0 {
		t.Errorf("VirtualKeyCode(\"\") = %d, want 0", got)
	}
}

func TestFlags(t *testing.T) {
	cases := []struct {
		m    Modifiers
		want int
	}{
		{Modifiers{}, 0},
		{Modifiers{Alt: true}, 1},
		{Modifiers{Ctrl: true}, 2},
		{Modifiers{Meta: true}, 4},
		{Modifiers{Shift: true}, 8},
		{Modifiers{Ctrl: true, Shift: true}, 10},
		{Modifiers{Alt: true, Ctrl: true, Meta: true, Shift: true}, 15},
	}

	for _, c := range cases {
		if got := Flags(c.m); got != c.want {
			t.Errorf("Flags(%+v) = %d, want %d", c.m, got, c.want)
		}
	}
}

func TestSyntheticModifiers(t *testing.T) {
	if ControlKey.VirtualKeyCode != 17 || ControlKey.Key != "Control" || ControlKey.Code != "ControlLeft" {
		t.Errorf("ControlKey = %+v, unexpected", ControlKey)
	}
	if AltKey.VirtualKeyCode != 18 {
		t.Errorf("AltKey.VirtualKeyCode = %d, want 18", AltKey.VirtualKeyCode)
	}
	if ShiftKey.VirtualKeyCode != 16 {
		t.Errorf("ShiftKey.VirtualKeyCode = %d, want 16", ShiftKey.VirtualKeyCode)
	}
}
