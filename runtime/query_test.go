package runtime

import (
	"conference-lab/domain"
	"conference-lab/domain/event"
	"conference-lab/mocks"
	"conference-lab/projection"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func conference() domain.Registry {
	state := domain.NewRegistry()
	for _, e := range []event.Event{
		event.ParticipantJoined{Participant: domain.Participant{Local: true, DisplayName: "Me"}},
		event.ParticipantJoined{Participant: domain.Participant{ID: "alice", DisplayName: "Alice", Role: domain.RoleModerator}},
		event.ParticipantJoined{Participant: domain.Participant{ID: "bob", DisplayName: "Bob"}},
		event.DominantSpeakerChanged{ID: "alice"},
		event.ParticipantPinned{ID: "bob"},
	} {
		state = projection.Apply(state, e)
	}
	return state
}

func TestQuery_Views(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	source := mocks.NewMockSnapshotSource(ctrl)
	source.EXPECT().Snapshot().Return(conference()).AnyTimes()

	q := NewQuery(source)

	local, ok := q.LocalParticipant()
	req.True(ok)
	req.Equal(domain.LocalParticipantDefaultID, local.ID)

	speaker, ok := q.DominantSpeaker()
	req.True(ok)
	req.Equal("alice", speaker.ID)

	pinned, ok := q.Pinned()
	req.True(ok)
	req.Equal("bob", pinned.ID)

	bob, ok := q.ByID("bob")
	req.True(ok)
	req.Equal("Bob", bob.DisplayName)

	req.Equal(3, q.Count())
	req.Equal([]string{"Me", "Alice", "Bob"}, q.DisplayNames())
	req.Len(q.Remote(), 2)
	moderators := q.ByRole(domain.RoleModerator)
	req.Len(moderators, 1)
	req.Equal("alice", moderators[0].ID)
}

func TestQuery_Empty_Registry(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	source := mocks.NewMockSnapshotSource(ctrl)
	source.EXPECT().Snapshot().Return(domain.NewRegistry()).AnyTimes()

	q := NewQuery(source)

	_, ok := q.LocalParticipant()
	req.False(ok)
	_, ok = q.DominantSpeaker()
	req.False(ok)
	_, ok = q.Pinned()
	req.False(ok)
	_, ok = q.ByID("alice")
	req.False(ok)
	req.Zero(q.Count())
	req.Empty(q.All())
}

func TestQuery_Results_Are_Copies(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	source := mocks.NewMockSnapshotSource(ctrl)
	source.EXPECT().Snapshot().Return(conference()).AnyTimes()
	q := NewQuery(source)

	// When a caller modifies what it got back
	all := q.All()
	all[0].DisplayName = "Mallory"

	// Then the next read is unaffected
	local, _ := q.LocalParticipant()
	req.Equal("Me", local.DisplayName)
}
