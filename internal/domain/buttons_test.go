package domain

import (
	"testing"

	"gopkg.in/yaml.v3"
)

func TestButtonMaskFromWireIsActiveLow(t *testing.T) {
	// start (bit 3) and cross (bit 14) held, everything else released.
	lo := byte(0xFF &^ (1 << 3))
	hi := byte(0xFF &^ (1 << 6))

	m := ButtonMaskFromWire(lo, hi)
	if !m.Start() {
		t.Fatalf("expected start to be held, mask=%s", m)
	}
	if !m.Has(ButtonCross) {
		t.Fatalf("expected cross to be held, mask=%s", m)
	}
	if m.Select() {
		t.Fatalf("select should be released")
	}

	gotLo, gotHi := m.Wire()
	if gotLo != lo || gotHi != hi {
		t.Fatalf("wire round trip mismatch: %#x %#x", gotLo, gotHi)
	}
}

func TestButtonMaskPressedEdges(t *testing.T) {
	prev := ButtonStart
	now := ButtonStart | ButtonSelect

	pressed := now.Pressed(prev)
	if pressed != ButtonSelect {
		t.Fatalf("expected only select as a new press, got %s", pressed)
	}
	if now.Pressed(now) != 0 {
		t.Fatalf("held buttons must not count as new presses")
	}
}

func TestButtonMaskYAML(t *testing.T) {
	var v struct {
		Named ButtonMask `yaml:"named"`
		Raw   ButtonMask `yaml:"raw"`
	}
	doc := "named: [start, select]\nraw: 8\n"
	if err := yaml.Unmarshal([]byte(doc), &v); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if v.Named != ButtonStart|ButtonSelect {
		t.Fatalf("unexpected named mask %s", v.Named)
	}
	if v.Raw != ButtonStart {
		t.Fatalf("unexpected raw mask %s", v.Raw)
	}

	if err := yaml.Unmarshal([]byte("named: [turbo]\n"), &v); err == nil {
		t.Fatalf("expected unknown button error")
	}
}
