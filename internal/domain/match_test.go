package domain

import "testing"

func TestMatch_Getters(t *testing.T) {
	item, err := NewItem("1", "M100037152", "TOWER SECTION 20M", "TS-20", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	m := NewMatch(item, 0.91)
	if m.Score() != 0.91 {
		t.Errorf("expected score 0.91, got %g", m.Score())
	}
	if m.Item().ID() != "1" {
		t.Errorf("expected item id '1', got %q", m.Item().ID())
	}
}

func TestMatch_GettersChainOffValueReturns(t *testing.T) {
	item, err := NewItem("1", "M100037152", "TOWER SECTION 20M", "", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Getters must be callable on non-addressable values, as returned
	// from slices of matches and from Match.Item().
	matches := []Match{NewMatch(item, 1.0)}
	if got := matches[0].Item().Code(); got != "M100037152" {
		t.Errorf("expected code M100037152, got %q", got)
	}
	if got := NewMatch(item, 0.5).Item().SearchText(); got != "TOWER SECTION 20M M100037152" {
		t.Errorf("unexpected search text: %q", got)
	}
}
