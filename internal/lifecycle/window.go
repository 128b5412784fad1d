package lifecycle

import (
	"strings"
	"time"
)

// Phase classifies an instant against a time window.
type Phase int

const (
	// NoWindow means neither bound is configured; treated as always open.
	NoWindow Phase = iota
	Before
	During
	After
)

func (p Phase) String() string {
	switch p {
	case NoWindow:
		return "no_window"
	case Before:
		return "before"
	case During:
		return "during"
	case After:
		return "after"
	}
	return "unknown"
}

// Open reports whether the phase allows the gated action.
func (p Phase) Open() bool {
	return p == NoWindow || p == During
}

// Window is an optional interval. Either bound may be absent; both bounds
// are inclusive.
type Window struct {
	Start *time.Time
	End   *time.Time
}

// Validate rejects zero-valued bounds and inverted intervals.
func (w Window) Validate() error {
	if w.Start != nil && w.Start.IsZero() {
		return NewError(CodeInvalidWindow, "window start is not a valid date")
	}
	if w.End != nil && w.End.IsZero() {
		return NewError(CodeInvalidWindow, "window end is not a valid date")
	}
	if w.Start != nil && w.End != nil && w.Start.After(*w.End) {
		return NewError(CodeInvalidWindow, "window start %s is after end %s",
			w.Start.Format(time.RFC3339), w.End.Format(time.RFC3339))
	}
	return nil
}

// Classify places now relative to w.
func Classify(now time.Time, w Window) (Phase, error) {
	if err := w.Validate(); err != nil {
		return NoWindow, err
	}
	if w.Start == nil && w.End == nil {
		return NoWindow, nil
	}
	if w.Start != nil && now.Before(*w.Start) {
		return Before, nil
	}
	if w.End != nil && now.After(*w.End) {
		return After, nil
	}
	return During, nil
}

// ParseWindow builds a Window from RFC 3339 strings. An empty string means
// the bound is absent; anything unparsable is an InvalidWindow error.
func ParseWindow(start, end string) (Window, error) {
	var w Window
	var err error
	if w.Start, err = parseBound("start", start); err != nil {
		return Window{}, err
	}
	if w.End, err = parseBound("end", end); err != nil {
		return Window{}, err
	}
	if err := w.Validate(); err != nil {
		return Window{}, err
	}
	return w, nil
}

func parseBound(name, raw string) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return nil, NewError(CodeInvalidWindow, "window %s %q is not a valid RFC 3339 date", name, raw)
	}
	return &t, nil
}

