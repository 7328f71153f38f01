package topic

import (
	"testing"
)

func TestMatcher_AddHas(t *testing.T) {
	m := NewMatcher()

	if !m.Add(Topic("glue.cell.*.weight")) {
		t.Error("expected Add to report a new pattern")
	}
	if m.Add(Topic("glue.cell.*.weight")) {
		t.Error("expected duplicate Add to report false")
	}
	if !m.Has(Topic("glue.cell.*.weight")) {
		t.Error("expected Has to find added pattern")
	}
	if m.Has(Topic("glue.cell.*.state")) {
		t.Error("expected Has to miss an unknown pattern")
	}
	if m.Count() != 1 {
		t.Errorf("Count() = %d, want 1", m.Count())
	}
}

func TestMatcher_Match(t *testing.T) {
	m := NewMatcher()
	m.Add(Topic("glue.cell.1.weight"))
	m.Add(Topic("glue.cell.*.weight"))
	m.Add(Topic("glue.**"))
	m.Add(Topic("robot.trajectory.point"))

	matches := m.Match(Topic("glue.cell.1.weight"))
	if len(matches) != 3 {
		t.Fatalf("Match() returned %d patterns, want 3: %v", len(matches), matches)
	}

	matches = m.Match(Topic("glue.cell.2.weight"))
	if len(matches) != 2 {
		t.Fatalf("Match() returned %d patterns, want 2: %v", len(matches), matches)
	}

	matches = m.Match(Topic("robot.trajectory.point"))
	if len(matches) != 1 || matches[0] != Topic("robot.trajectory.point") {
		t.Fatalf("Match() = %v, want exactly the exact pattern", matches)
	}

	if got := m.Match(Topic("vision.latest-image")); got != nil {
		t.Errorf("Match() on unmatched topic = %v, want nil", got)
	}
}

func TestMatcher_MatchNoDuplicates(t *testing.T) {
	m := NewMatcher()
	m.Add(Topic("**"))

	matches := m.Match(Topic("app.state"))
	if len(matches) != 1 {
		t.Fatalf("Match() returned %d patterns, want 1: %v", len(matches), matches)
	}
}

func TestMatcher_Remove(t *testing.T) {
	m := NewMatcher()
	m.Add(Topic("glue.cell.1.weight"))
	m.Add(Topic("glue.cell.1.state"))

	if !m.Remove(Topic("glue.cell.1.weight")) {
		t.Error("expected Remove to report success")
	}
	if m.Remove(Topic("glue.cell.1.weight")) {
		t.Error("expected second Remove to report false")
	}
	if m.Has(Topic("glue.cell.1.weight")) {
		t.Error("pattern still present after Remove")
	}
	if !m.Has(Topic("glue.cell.1.state")) {
		t.Error("sibling pattern lost by Remove")
	}
}

func TestMatcher_MatchExact(t *testing.T) {
	m := NewMatcher()
	m.Add(Topic("app.state"))
	m.Add(Topic("glue.cell.*.weight"))

	if !m.MatchExact(Topic("app.state")) {
		t.Error("expected MatchExact to find the literal pattern")
	}
	if m.MatchExact(Topic("glue.cell.1.weight")) {
		t.Error("MatchExact must not expand wildcards")
	}
}

func TestMatcher_Clear(t *testing.T) {
	m := NewMatcher()
	m.Add(Topic("app.state"))
	m.Clear()
	if m.Count() != 0 {
		t.Errorf("Count() after Clear = %d, want 0", m.Count())
	}
}
