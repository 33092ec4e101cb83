// Package projection derives the participant registry from events.
// Handles ordering-sensitive transitions and journal replay.
// Does not emit events or interact with UI directly.
package projection

import (
	"conference-lab/domain"
	"conference-lab/domain/event"
)

// Apply is the registry transition function. It never modifies state and
// always returns a registry satisfying every invariant.
// Events addressing a record that is not present leave the state unchanged.
func Apply(state domain.Registry, e event.Event) domain.Registry {
	next, _ := Step(state, e)
	return next
}

// Step behaves like Apply and also reports whether the event changed anything.
func Step(state domain.Registry, e event.Event) (domain.Registry, bool) {
	switch evt := e.(type) {
	case event.ParticipantJoined:
		return join(state, evt.Participant)
	case event.ParticipantLeft:
		return leave(state, evt)
	case event.ParticipantUpdated:
		return update(state, evt)
	case event.ParticipantIDChanged:
		return idChanged(state, evt.NewID)
	case event.RoleChanged:
		return update(state, event.ParticipantUpdated{ID: evt.ID, Local: evt.Local, Role: &evt.Role})
	case event.ConnectionStatusChanged:
		return update(state, event.ParticipantUpdated{ID: evt.ID, Local: evt.Local, ConnectionStatus: &evt.Status})
	case event.DisplayNameChanged:
		return update(state, event.ParticipantUpdated{ID: evt.ID, Local: evt.Local, DisplayName: &evt.Name})
	case event.DominantSpeakerChanged:
		return dominantSpeakerChanged(state, evt.ID)
	case event.ParticipantPinned:
		return pin(state, evt.ID)
	}
	return state, false
}

// resolve returns the id an event targets, following the local pointer when
// the event addresses the local participant.
func resolve(state domain.Registry, id string, local bool) (string, bool) {
	if id == "" && local {
		id, _ = state.LocalID()
	}
	if id == "" || !state.Has(id) {
		return "", false
	}
	return id, true
}

func join(state domain.Registry, p domain.Participant) (domain.Registry, bool) {
	b := state.Edit()
	if p.Local {
		// Rejoin: the new local record replaces the previous one entirely.
		if localID, ok := state.LocalID(); ok {
			b.Remove(localID)
		}
	}
	if !b.Insert(p) {
		return state, false
	}
	return b.Build(), true
}

func leave(state domain.Registry, evt event.ParticipantLeft) (domain.Registry, bool) {
	id, ok := resolve(state, evt.ID, evt.Local)
	if !ok {
		return state, false
	}
	b := state.Edit()
	b.Remove(id)
	return b.Build(), true
}

func update(state domain.Registry, evt event.ParticipantUpdated) (domain.Registry, bool) {
	id, ok := resolve(state, evt.ID, evt.Local)
	if !ok {
		return state, false
	}
	b := state.Edit()
	b.Update(id, func(p domain.Participant) domain.Participant {
		if evt.DisplayName != nil {
			p.DisplayName = *evt.DisplayName
		}
		if evt.Role != nil {
			p.Role = *evt.Role
		}
		if evt.ConnectionStatus != nil {
			p.ConnectionStatus = *evt.ConnectionStatus
		}
		if evt.AvatarURL != nil {
			p.AvatarURL = *evt.AvatarURL
		}
		if evt.Email != nil {
			p.Email = *evt.Email
		}
		return p
	})
	return b.Build(), true
}

func idChanged(state domain.Registry, newID string) (domain.Registry, bool) {
	localID, ok := state.LocalID()
	if !ok || localID == newID {
		return state, false
	}
	b := state.Edit()
	if !b.Rekey(localID, newID) {
		return state, false
	}
	return b.Build(), true
}

func dominantSpeakerChanged(state domain.Registry, id string) (domain.Registry, bool) {
	current, _ := state.DominantSpeakerID()
	if current == id || (current == "" && !state.Has(id)) {
		return state, false
	}
	b := state.Edit()
	b.SetDominantSpeaker(id)
	return b.Build(), true
}

func pin(state domain.Registry, id string) (domain.Registry, bool) {
	current, _ := state.PinnedID()
	if current == id || (current == "" && !state.Has(id)) {
		return state, false
	}
	b := state.Edit()
	b.Pin(id)
	return b.Build(), true
}
