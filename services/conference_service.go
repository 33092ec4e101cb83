package services

import (
	"conference-lab/contract"
	"conference-lab/domain"
	"conference-lab/domain/event"
	"log/slog"

	"github.com/samber/lo"
)

// IConferenceService is the producer side of the registry: signaling
// callbacks, local media and UI actions all go through it.
type IConferenceService interface {
	ParticipantJoined(p domain.Participant) (uint64, error)
	ParticipantLeft(id string) (uint64, error)
	ParticipantUpdated(u event.ParticipantUpdated) (uint64, error)
	ParticipantRoleChanged(id string, role domain.Role) (uint64, error)
	ParticipantConnectionStatusChanged(id string, status domain.ConnectionStatus) (uint64, error)
	ParticipantDisplayNameChanged(id, name string) (uint64, error)
	DominantSpeakerChanged(id string) (uint64, error)
	PinParticipant(id string) (uint64, error)

	LocalParticipantJoined(p domain.Participant) (uint64, error)
	LocalParticipantLeft() (uint64, error)
	LocalParticipantIDChanged(newID string) (uint64, error)
	LocalParticipantRoleChanged(role domain.Role) (uint64, error)
	LocalParticipantConnectionStatusChanged(status domain.ConnectionStatus) (uint64, error)
	SetLocalDisplayName(name string) (uint64, error)
}

// ConferenceService translates producer calls into events submitted to the
// dispatcher. Local-participant calls address the local record by flag so
// that it is resolved in submission order, not at call time.
type ConferenceService struct {
	dispatcher contract.IDispatcher
	log        *slog.Logger
}

func NewConferenceService(dispatcher contract.IDispatcher, log *slog.Logger) *ConferenceService {
	return &ConferenceService{dispatcher: dispatcher, log: log}
}

func (s *ConferenceService) submit(e event.Event) (uint64, error) {
	seq, err := s.dispatcher.Submit(e)
	if err != nil {
		s.log.Warn("Event rejected", "kind", e.Kind(), "error", err)
		return 0, err
	}
	return seq, nil
}

func (s *ConferenceService) ParticipantJoined(p domain.Participant) (uint64, error) {
	return s.submit(event.ParticipantJoined{Participant: p})
}

func (s *ConferenceService) ParticipantLeft(id string) (uint64, error) {
	return s.submit(event.ParticipantLeft{ID: id})
}

func (s *ConferenceService) ParticipantUpdated(u event.ParticipantUpdated) (uint64, error) {
	return s.submit(u)
}

func (s *ConferenceService) ParticipantRoleChanged(id string, role domain.Role) (uint64, error) {
	return s.submit(event.RoleChanged{ID: id, Role: role})
}

func (s *ConferenceService) ParticipantConnectionStatusChanged(id string, status domain.ConnectionStatus) (uint64, error) {
	return s.submit(event.ConnectionStatusChanged{ID: id, Status: status})
}

func (s *ConferenceService) ParticipantDisplayNameChanged(id, name string) (uint64, error) {
	return s.submit(event.DisplayNameChanged{ID: id, Name: domain.TruncateDisplayName(name)})
}

// DominantSpeakerChanged moves the dominant speaker to id; "" clears it.
func (s *ConferenceService) DominantSpeakerChanged(id string) (uint64, error) {
	return s.submit(event.DominantSpeakerChanged{ID: id})
}

// PinParticipant pins id; "" unpins everybody.
func (s *ConferenceService) PinParticipant(id string) (uint64, error) {
	return s.submit(event.ParticipantPinned{ID: id})
}

func (s *ConferenceService) LocalParticipantJoined(p domain.Participant) (uint64, error) {
	p.Local = true
	return s.submit(event.ParticipantJoined{Participant: p})
}

func (s *ConferenceService) LocalParticipantLeft() (uint64, error) {
	return s.submit(event.ParticipantLeft{Local: true})
}

func (s *ConferenceService) LocalParticipantIDChanged(newID string) (uint64, error) {
	return s.submit(event.ParticipantIDChanged{NewID: newID})
}

func (s *ConferenceService) LocalParticipantRoleChanged(role domain.Role) (uint64, error) {
	return s.submit(event.RoleChanged{Local: true, Role: role})
}

func (s *ConferenceService) LocalParticipantConnectionStatusChanged(status domain.ConnectionStatus) (uint64, error) {
	return s.submit(event.ConnectionStatusChanged{Local: true, Status: status})
}

func (s *ConferenceService) SetLocalDisplayName(name string) (uint64, error) {
	return s.submit(event.ParticipantUpdated{
		Local:       true,
		DisplayName: lo.ToPtr(domain.TruncateDisplayName(name)),
	})
}
