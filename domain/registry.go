package domain

import (
	"encoding/json"
	"slices"
)

// Registry is an immutable snapshot of every participant in the conference.
// The zero value is an empty registry with no local, pinned or dominant speaker.
// Records keep their join order for stable display.
type Registry struct {
	order             []string
	byID              map[string]Participant
	localID           string
	pinnedID          string
	dominantSpeakerID string
}

// NewRegistry returns the empty registry a conference session starts from.
func NewRegistry() Registry {
	return Registry{}
}

func (r Registry) Len() int { return len(r.order) }

func (r Registry) Get(id string) (Participant, bool) {
	p, ok := r.byID[id]
	return p, ok
}

func (r Registry) Has(id string) bool {
	_, ok := r.byID[id]
	return ok
}

// Participants returns the records in join order.
// The slice is a copy and may be modified by the caller.
func (r Registry) Participants() []Participant {
	res := make([]Participant, 0, len(r.order))
	for _, id := range r.order {
		res = append(res, r.byID[id])
	}
	return res
}

func (r Registry) IDs() []string { return slices.Clone(r.order) }

func (r Registry) LocalID() (string, bool) { return r.localID, r.localID != "" }

func (r Registry) PinnedID() (string, bool) { return r.pinnedID, r.pinnedID != "" }

func (r Registry) DominantSpeakerID() (string, bool) {
	return r.dominantSpeakerID, r.dominantSpeakerID != ""
}

type registryJSON struct {
	Participants      []Participant `json:"participants"`
	LocalID           *string       `json:"local_id"`
	PinnedID          *string       `json:"pinned_id"`
	DominantSpeakerID *string       `json:"dominant_speaker_id"`
}

func (r Registry) MarshalJSON() ([]byte, error) {
	return json.Marshal(registryJSON{
		Participants:      r.Participants(),
		LocalID:           nullable(r.localID),
		PinnedID:          nullable(r.pinnedID),
		DominantSpeakerID: nullable(r.dominantSpeakerID),
	})
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// Edit starts a copy-on-write edit of r. The receiver is never modified.
func (r Registry) Edit() *Builder {
	byID := make(map[string]Participant, len(r.byID)+1)
	for id, p := range r.byID {
		byID[id] = p
	}
	return &Builder{reg: Registry{
		order:             slices.Clone(r.order),
		byID:              byID,
		localID:           r.localID,
		pinnedID:          r.pinnedID,
		dominantSpeakerID: r.dominantSpeakerID,
	}}
}

// Builder accumulates edits on a private copy of a Registry.
// Every method keeps the singleton pointers in sync with the record flags.
type Builder struct {
	reg Registry
}

// Insert adds p at the end of the join order. It reports false when the id is taken.
func (b *Builder) Insert(p Participant) bool {
	p = p.normalize()
	if p.ID == "" || b.reg.Has(p.ID) {
		return false
	}
	b.reg.byID[p.ID] = p
	b.reg.order = append(b.reg.order, p.ID)
	if p.Local {
		b.reg.localID = p.ID
	}
	return true
}

// Remove deletes the record and clears any pointer referencing it.
func (b *Builder) Remove(id string) bool {
	if !b.reg.Has(id) {
		return false
	}
	delete(b.reg.byID, id)
	b.reg.order = slices.DeleteFunc(b.reg.order, func(v string) bool { return v == id })
	if b.reg.localID == id {
		b.reg.localID = ""
	}
	if b.reg.pinnedID == id {
		b.reg.pinnedID = ""
	}
	if b.reg.dominantSpeakerID == id {
		b.reg.dominantSpeakerID = ""
	}
	return true
}

// Update merges the fields returned by fn into the record.
// Identity and registry-owned flags are restored after fn runs.
func (b *Builder) Update(id string, fn func(Participant) Participant) bool {
	current, ok := b.reg.byID[id]
	if !ok {
		return false
	}
	next := fn(current)
	next.ID = current.ID
	next.Local = current.Local
	next.Pinned = current.Pinned
	next.DominantSpeaker = current.DominantSpeaker
	next.DisplayName = TruncateDisplayName(next.DisplayName)
	b.reg.byID[id] = next
	return true
}

// Rekey moves the record stored under oldID to newID, keeping its position
// in the join order and every other field.
func (b *Builder) Rekey(oldID, newID string) bool {
	p, ok := b.reg.byID[oldID]
	if !ok || newID == "" || b.reg.Has(newID) {
		return false
	}
	delete(b.reg.byID, oldID)
	p.ID = newID
	b.reg.byID[newID] = p
	if i := slices.Index(b.reg.order, oldID); i >= 0 {
		b.reg.order[i] = newID
	}
	if b.reg.localID == oldID {
		b.reg.localID = newID
	}
	if b.reg.pinnedID == oldID {
		b.reg.pinnedID = newID
	}
	if b.reg.dominantSpeakerID == oldID {
		b.reg.dominantSpeakerID = newID
	}
	return true
}

// Pin moves the pinned flag to id. An empty or unknown id leaves nobody pinned.
func (b *Builder) Pin(id string) {
	b.reg.pinnedID = b.moveFlag(b.reg.pinnedID, id, func(p *Participant, v bool) { p.Pinned = v })
}

// SetDominantSpeaker moves the dominant speaker flag to id.
// An empty or unknown id leaves no dominant speaker.
func (b *Builder) SetDominantSpeaker(id string) {
	b.reg.dominantSpeakerID = b.moveFlag(b.reg.dominantSpeakerID, id,
		func(p *Participant, v bool) { p.DominantSpeaker = v })
}

func (b *Builder) moveFlag(previous, next string, set func(*Participant, bool)) string {
	if p, ok := b.reg.byID[previous]; ok {
		set(&p, false)
		b.reg.byID[previous] = p
	}
	p, ok := b.reg.byID[next]
	if !ok {
		return ""
	}
	set(&p, true)
	b.reg.byID[next] = p
	return next
}

// Build ends the edit. The builder must not be used afterwards.
func (b *Builder) Build() Registry {
	reg := b.reg
	b.reg = Registry{}
	return reg
}
