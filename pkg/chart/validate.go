package chart

import (
	"math"

	"github.com/matzehuels/lanechart/pkg/errors"
)

// Validate checks the semantic rules the schema cannot express: unique ids,
// finite times, and links that point at existing items. It expects a
// normalized chart.
//
// Links whose recorded swimlanes disagree with where their items live are
// not errors; see [Chart.StaleLinks].
func Validate(c *Chart) error {
	if c == nil {
		return errors.New(errors.ErrCodeInvalidDocument, "chart is nil")
	}
	if c.ID != "" {
		if err := errors.ValidateID(c.ID); err != nil {
			return err
		}
	}

	seen := make(map[string]string)
	claim := func(id, what string) error {
		if err := errors.ValidateID(id); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidDocument, err, "%s id", what)
		}
		if prev, ok := seen[id]; ok {
			return errors.New(errors.ErrCodeInvalidDocument, "duplicate id %q (%s and %s)", id, prev, what)
		}
		seen[id] = what
		return nil
	}

	for _, lane := range c.Swimlanes {
		if err := claim(lane.ID, "swimlane"); err != nil {
			return err
		}
		if err := errors.ValidateColor(lane.Color); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidDocument, err, "swimlane %s", lane.ID)
		}
		for _, it := range lane.Items {
			if err := claim(it.ID, "item"); err != nil {
				return err
			}
			if !finite(it.Start) || !finite(it.Duration) {
				return errors.New(errors.ErrCodeInvalidDocument, "item %s: start and duration must be finite", it.ID)
			}
			if it.Duration < 0 {
				return errors.New(errors.ErrCodeInvalidDocument, "item %s: negative duration", it.ID)
			}
			switch it.Kind {
			case KindTask, KindState:
			default:
				return errors.New(errors.ErrCodeInvalidDocument, "item %s: unknown kind %q", it.ID, it.Kind)
			}
			if err := errors.ValidateColor(it.Color); err != nil {
				return errors.Wrap(errors.ErrCodeInvalidDocument, err, "item %s", it.ID)
			}
		}
	}

	idx := c.Index()
	for _, l := range c.Links {
		if err := claim(l.ID, "link"); err != nil {
			return err
		}
		if _, ok := idx[l.FromID]; !ok {
			return errors.New(errors.ErrCodeInvalidDocument, "link %s: unknown item %q", l.ID, l.FromID)
		}
		if _, ok := idx[l.ToID]; !ok {
			return errors.New(errors.ErrCodeInvalidDocument, "link %s: unknown item %q", l.ID, l.ToID)
		}
		if l.FromID == l.ToID {
			return errors.New(errors.ErrCodeInvalidDocument, "link %s: item %q links to itself", l.ID, l.FromID)
		}
		from, to := l.Handles()
		if !validHandle(from) || !validHandle(to) {
			return errors.New(errors.ErrCodeInvalidDocument, "link %s: unknown handle", l.ID)
		}
		if err := errors.ValidateColor(l.Color); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidDocument, err, "link %s", l.ID)
		}
	}

	for _, f := range c.Flags {
		if err := claim(f.ID, "flag"); err != nil {
			return err
		}
		if !finite(f.At) {
			return errors.New(errors.ErrCodeInvalidDocument, "flag %s: time must be finite", f.ID)
		}
		if err := errors.ValidateColor(f.Color); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidDocument, err, "flag %s", f.ID)
		}
	}
	return nil
}

func validHandle(h Handle) bool { return h == HandleStart || h == HandleFinish }

func finite(f float64) bool { return !math.IsNaN(f) && !math.IsInf(f, 0) }
