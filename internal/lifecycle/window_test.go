package lifecycle

import (
	"errors"
	"testing"
	"time"
)

func TestClassifyBoundaries(t *testing.T) {
	start := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	end := time.Date(2026, 3, 10, 17, 0, 0, 0, time.UTC)
	ms := time.Millisecond

	tests := []struct {
		name string
		now  time.Time
		w    Window
		want Phase
	}{
		{"no bounds", start, Window{}, NoWindow},
		{"at start", start, Window{Start: &start, End: &end}, During},
		{"at end", end, Window{Start: &start, End: &end}, During},
		{"just before start", start.Add(-ms), Window{Start: &start, End: &end}, Before},
		{"just after end", end.Add(ms), Window{Start: &start, End: &end}, After},
		{"inside", start.Add(time.Hour), Window{Start: &start, End: &end}, During},
		{"open ended after start", end.Add(24 * time.Hour), Window{Start: &start}, During},
		{"open ended before start", start.Add(-ms), Window{Start: &start}, Before},
		{"end only before end", start, Window{End: &end}, During},
		{"end only at end", end, Window{End: &end}, During},
		{"end only after end", end.Add(ms), Window{End: &end}, After},
		{"single instant window", start, Window{Start: &start, End: &start}, During},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Classify(tt.now, tt.w)
			if err != nil {
				t.Fatalf("Classify: %v", err)
			}
			if got != tt.want {
				t.Fatalf("Classify = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestClassifyRejectsMalformedWindows(t *testing.T) {
	start := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	var zero time.Time

	for name, w := range map[string]Window{
		"inverted":   {Start: &start, End: &end},
		"zero start": {Start: &zero},
		"zero end":   {End: &zero},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := Classify(start, w)
			if !errors.Is(err, ErrInvalidWindow) {
				t.Fatalf("expected invalid window error, got %v", err)
			}
		})
	}
}

func TestParseWindow(t *testing.T) {
	w, err := ParseWindow("2026-03-01T00:00:00Z", "")
	if err != nil {
		t.Fatalf("ParseWindow: %v", err)
	}
	if w.Start == nil || w.End != nil {
		t.Fatalf("expected start-only window, got %+v", w)
	}

	if _, err := ParseWindow("next tuesday", ""); !errors.Is(err, ErrInvalidWindow) {
		t.Fatalf("expected invalid window for unparsable start, got %v", err)
	}
	if _, err := ParseWindow("2026-03-10T00:00:00Z", "2026-03-01T00:00:00Z"); !errors.Is(err, ErrInvalidWindow) {
		t.Fatalf("expected invalid window for inverted bounds, got %v", err)
	}
	if w, err := ParseWindow("  ", ""); err != nil || w.Start != nil || w.End != nil {
		t.Fatalf("blank bounds should be absent, got %+v, %v", w, err)
	}
}

func TestPhaseOpen(t *testing.T) {
	if !NoWindow.Open() || !During.Open() {
		t.Fatal("NoWindow and During must be open")
	}
	if Before.Open() || After.Open() {
		t.Fatal("Before and After must be closed")
	}
}
