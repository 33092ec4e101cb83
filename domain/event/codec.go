package event

import (
	"conference-lab/errors"
	"encoding/json"
	"fmt"
)

// Envelope is the wire form of an event: its kind plus the JSON payload.
type Envelope struct {
	Kind    Kind            `json:"kind"`
	Payload json.RawMessage `json:"payload"`
}

func Encode(e Event) ([]byte, error) {
	payload, err := json.Marshal(e)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Envelope{Kind: e.Kind(), Payload: payload})
}

// Decode parses an envelope produced by Encode. Unknown kinds wrap
// errors.ErrUnknownEventKind.
func Decode(data []byte) (Event, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", errors.ErrMalformedEvent, err)
	}
	return DecodePayload(env.Kind, env.Payload)
}

func DecodePayload(kind Kind, payload json.RawMessage) (Event, error) {
	switch kind {
	case KindParticipantJoined:
		return decodeAs[ParticipantJoined](payload)
	case KindParticipantLeft:
		return decodeAs[ParticipantLeft](payload)
	case KindParticipantUpdated:
		return decodeAs[ParticipantUpdated](payload)
	case KindParticipantIDChanged:
		return decodeAs[ParticipantIDChanged](payload)
	case KindRoleChanged:
		return decodeAs[RoleChanged](payload)
	case KindConnectionStatusChanged:
		return decodeAs[ConnectionStatusChanged](payload)
	case KindDisplayNameChanged:
		return decodeAs[DisplayNameChanged](payload)
	case KindDominantSpeakerChanged:
		return decodeAs[DominantSpeakerChanged](payload)
	case KindParticipantPinned:
		return decodeAs[ParticipantPinned](payload)
	}
	return nil, fmt.Errorf("%w: %q", errors.ErrUnknownEventKind, kind)
}

func decodeAs[T Event](payload json.RawMessage) (Event, error) {
	var evt T
	if len(payload) == 0 {
		return evt, nil
	}
	if err := json.Unmarshal(payload, &evt); err != nil {
		return nil, fmt.Errorf("%w: %v", errors.ErrMalformedEvent, err)
	}
	return evt, nil
}
