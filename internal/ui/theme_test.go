package ui

import (
	"strings"
	"testing"
)

func TestLabel(t *testing.T) {
	tests := map[string]string{
		"strength":    "Strength",
		"main_weapon": "Main Weapon",
		"quickPotion": "Quickpotion",
	}
	for in, want := range tests {
		if got := Label(in); got != want {
			t.Errorf("%q: expected %q, got %q", in, want, got)
		}
	}
}

func TestNumber(t *testing.T) {
	if got := Number(1234567); got != "1,234,567" {
		t.Errorf("Expected 1,234,567, got %q", got)
	}
}

func TestMeterAndHeading(t *testing.T) {
	if got := Meter(3, 10); !strings.Contains(got, "3/10") {
		t.Errorf("Expected the pool numbers, got %q", got)
	}
	if got := Heading(IconScroll, "Journal"); !strings.Contains(got, "Journal") {
		t.Errorf("Expected the title, got %q", got)
	}
	if got := LabelValue("Level", 4); !strings.Contains(got, "4") {
		t.Errorf("Expected the value, got %q", got)
	}
}
