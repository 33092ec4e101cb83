// Package domain contains core concepts of the conference roster.
// This file defines Participant entities and related invariants.
// No runtime, network, or UI logic should be added here.
package domain

import "unicode/utf8"

// MaxDisplayNameLength is the maximum number of runes kept from a display name.
const MaxDisplayNameLength = 50

// LocalParticipantDefaultID is the provisional id of the local participant
// until the signaling layer assigns a permanent one.
const LocalParticipantDefaultID = "local"

type Role string

const (
	RoleNone        Role = "none"
	RoleParticipant Role = "participant"
	RoleModerator   Role = "moderator"
)

type ConnectionStatus string

const (
	ConnectionActive      ConnectionStatus = "active"
	ConnectionInactive    ConnectionStatus = "inactive"
	ConnectionInterrupted ConnectionStatus = "interrupted"
	ConnectionRestoring   ConnectionStatus = "restoring"
)

// Participant is one conference member as seen by the local client.
// Pinned and DominantSpeaker are owned by the registry and only change
// through their dedicated events.
type Participant struct {
	ID               string           `json:"id" validate:"required_without=Local"`
	Local            bool             `json:"local"`
	DisplayName      string           `json:"display_name"`
	Role             Role             `json:"role" validate:"omitempty,oneof=none participant moderator"`
	ConnectionStatus ConnectionStatus `json:"connection_status" validate:"omitempty,oneof=active inactive interrupted restoring"`
	AvatarURL        string           `json:"avatar_url,omitempty" validate:"omitempty,url"`
	Email            string           `json:"email,omitempty" validate:"omitempty,email"`
	DominantSpeaker  bool             `json:"dominant_speaker"`
	Pinned           bool             `json:"pinned"`
}

// TruncateDisplayName cuts name to MaxDisplayNameLength runes.
func TruncateDisplayName(name string) string {
	if utf8.RuneCountInString(name) <= MaxDisplayNameLength {
		return name
	}
	return string([]rune(name)[:MaxDisplayNameLength])
}

// normalize applies defaults to a record about to enter the registry.
func (p Participant) normalize() Participant {
	p.DisplayName = TruncateDisplayName(p.DisplayName)
	if p.Role == "" {
		p.Role = RoleNone
	}
	if p.ConnectionStatus == "" {
		p.ConnectionStatus = ConnectionActive
	}
	if p.Local && p.ID == "" {
		p.ID = LocalParticipantDefaultID
	}
	p.Pinned = false
	p.DominantSpeaker = false
	return p
}
