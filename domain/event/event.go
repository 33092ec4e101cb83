// Package event defines the events that drive the participant registry.
// Each event is a tagged variant identified by its Kind.
package event

import "conference-lab/domain"

type Kind string

// Participant events, produced by the signaling layer and local media.
const (
	KindParticipantJoined       Kind = "participant.joined"
	KindParticipantLeft         Kind = "participant.left"
	KindParticipantUpdated      Kind = "participant.updated"
	KindParticipantIDChanged    Kind = "participant.id_changed"
	KindRoleChanged             Kind = "participant.role_changed"
	KindConnectionStatusChanged Kind = "participant.connection_status_changed"
	KindDisplayNameChanged      Kind = "participant.display_name_changed"
)

// Conference focus events.
const (
	KindDominantSpeakerChanged Kind = "conference.dominant_speaker_changed"
	KindParticipantPinned      Kind = "conference.participant_pinned"
)

type Event interface {
	Kind() Kind
	isEvent()
}

// ParticipantJoined inserts a record. A local record replaces any existing local record.
type ParticipantJoined struct {
	Participant domain.Participant `json:"participant"`
}

// ParticipantLeft removes the record with ID, or the local record when Local is set.
type ParticipantLeft struct {
	ID    string `json:"id,omitempty" validate:"required_without=Local"`
	Local bool   `json:"local,omitempty"`
}

// ParticipantUpdated merges the non-nil fields into the record with ID,
// or into the local record when Local is set.
type ParticipantUpdated struct {
	ID               string                   `json:"id,omitempty" validate:"required_without=Local"`
	Local            bool                     `json:"local,omitempty"`
	DisplayName      *string                  `json:"display_name,omitempty"`
	Role             *domain.Role             `json:"role,omitempty" validate:"omitempty,oneof=none participant moderator"`
	ConnectionStatus *domain.ConnectionStatus `json:"connection_status,omitempty" validate:"omitempty,oneof=active inactive interrupted restoring"`
	AvatarURL        *string                  `json:"avatar_url,omitempty" validate:"omitempty,url"`
	Email            *string                  `json:"email,omitempty" validate:"omitempty,email"`
}

// ParticipantIDChanged rekeys the local record once signaling assigns its permanent id.
type ParticipantIDChanged struct {
	NewID string `json:"new_id" validate:"required"`
}

type RoleChanged struct {
	ID    string      `json:"id,omitempty" validate:"required_without=Local"`
	Local bool        `json:"local,omitempty"`
	Role  domain.Role `json:"role" validate:"required,oneof=none participant moderator"`
}

type ConnectionStatusChanged struct {
	ID     string                  `json:"id,omitempty" validate:"required_without=Local"`
	Local  bool                    `json:"local,omitempty"`
	Status domain.ConnectionStatus `json:"status" validate:"required,oneof=active inactive interrupted restoring"`
}

type DisplayNameChanged struct {
	ID    string `json:"id,omitempty" validate:"required_without=Local"`
	Local bool   `json:"local,omitempty"`
	Name  string `json:"name"`
}

// DominantSpeakerChanged moves the dominant speaker flag. An empty ID clears it.
type DominantSpeakerChanged struct {
	ID string `json:"id,omitempty"`
}

// ParticipantPinned moves the pinned flag. An empty ID unpins everybody, and so
// does an ID that is not in the registry.
type ParticipantPinned struct {
	ID string `json:"id,omitempty"`
}

func (ParticipantJoined) Kind() Kind       { return KindParticipantJoined }
func (ParticipantLeft) Kind() Kind         { return KindParticipantLeft }
func (ParticipantUpdated) Kind() Kind      { return KindParticipantUpdated }
func (ParticipantIDChanged) Kind() Kind    { return KindParticipantIDChanged }
func (RoleChanged) Kind() Kind             { return KindRoleChanged }
func (ConnectionStatusChanged) Kind() Kind { return KindConnectionStatusChanged }
func (DisplayNameChanged) Kind() Kind      { return KindDisplayNameChanged }
func (DominantSpeakerChanged) Kind() Kind  { return KindDominantSpeakerChanged }
func (ParticipantPinned) Kind() Kind       { return KindParticipantPinned }

func (ParticipantJoined) isEvent()       {}
func (ParticipantLeft) isEvent()         {}
func (ParticipantUpdated) isEvent()      {}
func (ParticipantIDChanged) isEvent()    {}
func (RoleChanged) isEvent()             {}
func (ConnectionStatusChanged) isEvent() {}
func (DisplayNameChanged) isEvent()      {}
func (DominantSpeakerChanged) isEvent()  {}
func (ParticipantPinned) isEvent()       {}

// Target returns the participant id an event addresses and whether it
// addresses the local record instead. Events without a target return "", false.
func Target(e Event) (string, bool) {
	switch evt := e.(type) {
	case ParticipantJoined:
		return evt.Participant.ID, evt.Participant.Local
	case ParticipantLeft:
		return evt.ID, evt.Local
	case ParticipantUpdated:
		return evt.ID, evt.Local
	case RoleChanged:
		return evt.ID, evt.Local
	case ConnectionStatusChanged:
		return evt.ID, evt.Local
	case DisplayNameChanged:
		return evt.ID, evt.Local
	case DominantSpeakerChanged:
		return evt.ID, false
	case ParticipantPinned:
		return evt.ID, false
	case ParticipantIDChanged:
		return evt.NewID, true
	}
	return "", false
}
