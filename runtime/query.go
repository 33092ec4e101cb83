package runtime

import (
	"conference-lab/contract"
	"conference-lab/domain"

	"github.com/samber/lo"
)

// Query derives read views from the last committed registry.
// Every result is a copy: later commits never change what a caller holds.
type Query struct {
	source contract.SnapshotSource
}

func NewQuery(source contract.SnapshotSource) Query {
	return Query{source: source}
}

func (q Query) LocalParticipant() (domain.Participant, bool) {
	reg := q.source.Snapshot()
	id, ok := reg.LocalID()
	if !ok {
		return domain.Participant{}, false
	}
	return reg.Get(id)
}

func (q Query) ByID(id string) (domain.Participant, bool) {
	return q.source.Snapshot().Get(id)
}

func (q Query) DominantSpeaker() (domain.Participant, bool) {
	reg := q.source.Snapshot()
	id, ok := reg.DominantSpeakerID()
	if !ok {
		return domain.Participant{}, false
	}
	return reg.Get(id)
}

func (q Query) Pinned() (domain.Participant, bool) {
	reg := q.source.Snapshot()
	id, ok := reg.PinnedID()
	if !ok {
		return domain.Participant{}, false
	}
	return reg.Get(id)
}

func (q Query) Count() int {
	return q.source.Snapshot().Len()
}

// All returns every participant in join order.
func (q Query) All() []domain.Participant {
	return q.source.Snapshot().Participants()
}

// Remote returns every participant except the local one, in join order.
func (q Query) Remote() []domain.Participant {
	return lo.Filter(q.All(), func(p domain.Participant, _ int) bool {
		return !p.Local
	})
}

// ByRole returns the participants holding role, in join order.
func (q Query) ByRole(role domain.Role) []domain.Participant {
	return lo.Filter(q.All(), func(p domain.Participant, _ int) bool {
		return p.Role == role
	})
}

// DisplayNames returns the display names in join order.
func (q Query) DisplayNames() []string {
	return lo.Map(q.All(), func(p domain.Participant, _ int) string {
		return p.DisplayName
	})
}
