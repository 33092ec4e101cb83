package domain

import (
	"conference-lab/errors"
	"fmt"
	"unicode/utf8"
)

// Check verifies every registry invariant and reports the first violation
// wrapped in errors.ErrInvariantViolation.
func Check(r Registry) error {
	if len(r.order) != len(r.byID) {
		return violation("order holds %d ids for %d records", len(r.order), len(r.byID))
	}
	seen := make(map[string]struct{}, len(r.order))
	var locals, pinned, dominant []string
	for _, id := range r.order {
		if _, dup := seen[id]; dup {
			return violation("duplicate id %q", id)
		}
		seen[id] = struct{}{}
		p, ok := r.byID[id]
		if !ok || p.ID != id {
			return violation("id %q is not keyed to its record", id)
		}
		if utf8.RuneCountInString(p.DisplayName) > MaxDisplayNameLength {
			return violation("display name of %q exceeds %d runes", id, MaxDisplayNameLength)
		}
		if p.Local {
			locals = append(locals, id)
		}
		if p.Pinned {
			pinned = append(pinned, id)
		}
		if p.DominantSpeaker {
			dominant = append(dominant, id)
		}
	}
	if err := checkSingleton("local", locals, r.localID); err != nil {
		return err
	}
	if err := checkSingleton("pinned", pinned, r.pinnedID); err != nil {
		return err
	}
	return checkSingleton("dominant speaker", dominant, r.dominantSpeakerID)
}

func checkSingleton(name string, flagged []string, pointer string) error {
	switch {
	case len(flagged) > 1:
		return violation("%d records flagged %s: %v", len(flagged), name, flagged)
	case len(flagged) == 0 && pointer != "":
		return violation("%s pointer %q references no flagged record", name, pointer)
	case len(flagged) == 1 && flagged[0] != pointer:
		return violation("%s pointer %q but record %q is flagged", name, pointer, flagged[0])
	}
	return nil
}

func violation(format string, args ...any) error {
	return fmt.Errorf("%w: %s", errors.ErrInvariantViolation, fmt.Sprintf(format, args...))
}

// Repair rebuilds r so that every invariant holds again.
// When several records claim a singleton flag, the most recently joined claim wins.
func Repair(r Registry) Registry {
	out := Registry{byID: make(map[string]Participant, len(r.byID))}
	for _, id := range r.order {
		p, ok := r.byID[id]
		if !ok {
			continue
		}
		if _, dup := out.byID[id]; dup {
			continue
		}
		p.ID = id
		p.DisplayName = TruncateDisplayName(p.DisplayName)
		out.byID[id] = p
		out.order = append(out.order, id)
	}
	out.localID = lastClaim(out, func(p Participant) bool { return p.Local },
		func(p *Participant) { p.Local = false })
	out.pinnedID = lastClaim(out, func(p Participant) bool { return p.Pinned },
		func(p *Participant) { p.Pinned = false })
	out.dominantSpeakerID = lastClaim(out, func(p Participant) bool { return p.DominantSpeaker },
		func(p *Participant) { p.DominantSpeaker = false })
	return out
}

func lastClaim(r Registry, claims func(Participant) bool, clear func(*Participant)) string {
	winner := ""
	for i := len(r.order) - 1; i >= 0; i-- {
		id := r.order[i]
		p := r.byID[id]
		if !claims(p) {
			continue
		}
		if winner == "" {
			winner = id
			continue
		}
		clear(&p)
		r.byID[id] = p
	}
	return winner
}
