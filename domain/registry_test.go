package domain

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRegistry_Insert_Applies_Defaults(t *testing.T) {
	req := require.New(t)

	// Given an empty registry
	b := NewRegistry().Edit()

	// When a local participant without id and a remote one with flags are inserted
	req.True(b.Insert(Participant{Local: true, DisplayName: strings.Repeat("é", 60)}))
	req.True(b.Insert(Participant{ID: "alice", Pinned: true, DominantSpeaker: true}))
	reg := b.Build()

	// Then the local record gets the provisional id and a truncated name
	local, ok := reg.Get(LocalParticipantDefaultID)
	req.True(ok)
	req.Equal([]rune(local.DisplayName), []rune(strings.Repeat("é", MaxDisplayNameLength)))
	req.Equal(RoleNone, local.Role)
	req.Equal(ConnectionActive, local.ConnectionStatus)
	id, ok := reg.LocalID()
	req.True(ok)
	req.Equal(LocalParticipantDefaultID, id)

	// Then flags carried by the record are ignored
	alice, _ := reg.Get("alice")
	req.False(alice.Pinned)
	req.False(alice.DominantSpeaker)
	_, ok = reg.PinnedID()
	req.False(ok)
	req.NoError(Check(reg))
}

func TestRegistry_Insert_Rejects_Duplicate(t *testing.T) {
	req := require.New(t)
	b := NewRegistry().Edit()
	req.True(b.Insert(Participant{ID: "alice", DisplayName: "first"}))

	// When the same id is inserted twice
	req.False(b.Insert(Participant{ID: "alice", DisplayName: "second"}))

	// Then the first record is kept
	reg := b.Build()
	p, _ := reg.Get("alice")
	req.Equal("first", p.DisplayName)
	req.Equal(1, reg.Len())
}

func TestRegistry_Edit_Does_Not_Modify_Receiver(t *testing.T) {
	req := require.New(t)
	b := NewRegistry().Edit()
	b.Insert(Participant{ID: "alice"})
	before := b.Build()

	// When the registry is edited
	b = before.Edit()
	b.Insert(Participant{ID: "bob"})
	b.Pin("alice")
	after := b.Build()

	// Then the first snapshot is untouched
	req.Equal(1, before.Len())
	_, ok := before.PinnedID()
	req.False(ok)
	alice, _ := before.Get("alice")
	req.False(alice.Pinned)
	req.Equal(2, after.Len())
}

func TestRegistry_Remove_Clears_Pointers(t *testing.T) {
	req := require.New(t)
	b := NewRegistry().Edit()
	b.Insert(Participant{ID: "alice"})
	b.Pin("alice")
	b.SetDominantSpeaker("alice")

	// When the pinned dominant speaker is removed
	req.True(b.Remove("alice"))
	reg := b.Build()

	// Then no pointer references it anymore
	_, ok := reg.PinnedID()
	req.False(ok)
	_, ok = reg.DominantSpeakerID()
	req.False(ok)
	req.NoError(Check(reg))
}

func TestRegistry_Update_Keeps_Owned_Fields(t *testing.T) {
	req := require.New(t)
	b := NewRegistry().Edit()
	b.Insert(Participant{ID: "alice", Local: true})
	b.Pin("alice")

	// When an update tries to change identity and flags
	req.True(b.Update("alice", func(p Participant) Participant {
		p.ID = "mallory"
		p.Local = false
		p.Pinned = false
		p.Role = RoleModerator
		p.DisplayName = strings.Repeat("x", 80)
		return p
	}))
	reg := b.Build()

	// Then only the editable fields changed
	p, ok := reg.Get("alice")
	req.True(ok)
	req.True(p.Local)
	req.True(p.Pinned)
	req.Equal(RoleModerator, p.Role)
	req.Len(p.DisplayName, MaxDisplayNameLength)
	req.NoError(Check(reg))
}

func TestRegistry_Rekey_Keeps_Position_And_Pointers(t *testing.T) {
	req := require.New(t)
	b := NewRegistry().Edit()
	b.Insert(Participant{ID: "alice"})
	b.Insert(Participant{Local: true})
	b.Insert(Participant{ID: "bob"})
	b.Pin(LocalParticipantDefaultID)
	b.SetDominantSpeaker(LocalParticipantDefaultID)

	// When the local record is rekeyed
	req.True(b.Rekey(LocalParticipantDefaultID, "abc123"))
	// And rekeying onto an existing id fails
	req.False(b.Rekey("abc123", "bob"))
	reg := b.Build()

	// Then it keeps its place and its flags
	req.Equal([]string{"alice", "abc123", "bob"}, reg.IDs())
	id, _ := reg.LocalID()
	req.Equal("abc123", id)
	id, _ = reg.PinnedID()
	req.Equal("abc123", id)
	id, _ = reg.DominantSpeakerID()
	req.Equal("abc123", id)
	req.False(reg.Has(LocalParticipantDefaultID))
	req.NoError(Check(reg))
}

func TestRegistry_Pin_Unknown_Clears(t *testing.T) {
	req := require.New(t)
	b := NewRegistry().Edit()
	b.Insert(Participant{ID: "alice"})
	b.Insert(Participant{ID: "bob"})
	b.Pin("alice")

	// When the pin moves to bob
	b.Pin("bob")
	reg := b.Build()
	alice, _ := reg.Get("alice")
	bob, _ := reg.Get("bob")
	req.False(alice.Pinned)
	req.True(bob.Pinned)

	// When an unknown participant is pinned
	b = reg.Edit()
	b.Pin("ghost")
	reg = b.Build()

	// Then nobody is pinned
	_, ok := reg.PinnedID()
	req.False(ok)
	bob, _ = reg.Get("bob")
	req.False(bob.Pinned)
	req.NoError(Check(reg))
}

func TestRegistry_MarshalJSON(t *testing.T) {
	req := require.New(t)
	b := NewRegistry().Edit()
	b.Insert(Participant{ID: "alice", DisplayName: "Alice"})
	b.Pin("alice")

	data, err := json.Marshal(b.Build())
	req.NoError(err)

	var out map[string]any
	req.NoError(json.Unmarshal(data, &out))
	req.Equal("alice", out["pinned_id"])
	req.Nil(out["local_id"])
	req.Nil(out["dominant_speaker_id"])
	req.Len(out["participants"], 1)
}

func TestRegistry_Zero_Value_Is_Empty(t *testing.T) {
	req := require.New(t)
	var reg Registry

	req.Equal(0, reg.Len())
	req.Empty(reg.Participants())
	_, ok := reg.Get("alice")
	req.False(ok)
	req.NoError(Check(reg))
}
