package protocol

import (
	"encoding/json"
	"fmt"

	"github.com/bytedance/sonic"
)

// Marshal creates a JSON-encoded Envelope from a message type and payload.
// A nil payload produces an envelope with no payload field.
func Marshal(msgType MessageType, payload interface{}) ([]byte, error) {
	var raw json.RawMessage
	if payload != nil {
		b, err := sonic.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("protocol: marshal payload for %q: %w", msgType, err)
		}
		raw = b
	}
	return sonic.Marshal(Envelope{
		Type:    msgType,
		Payload: raw,
	})
}

// Unmarshal parses a JSON-encoded Envelope. The payload stays raw until the
// caller knows, from the type, what to decode it into.
func Unmarshal(data []byte) (Envelope, error) {
	var env Envelope
	if err := sonic.Unmarshal(data, &env); err != nil {
		return Envelope{}, fmt.Errorf("protocol: unmarshal envelope: %w", err)
	}
	if env.Type == "" {
		return Envelope{}, fmt.Errorf("protocol: envelope missing type field")
	}
	return env, nil
}

// UnmarshalPayload decodes an envelope's payload into a typed struct. An
// absent payload decodes to the zero value, so messages that carry no body
// (a bare record trigger, a history request) stay valid.
func UnmarshalPayload[T any](env Envelope) (T, error) {
	var v T
	if len(env.Payload) == 0 {
		return v, nil
	}
	if err := sonic.Unmarshal(env.Payload, &v); err != nil {
		return v, fmt.Errorf("protocol: unmarshal %q payload: %w", env.Type, err)
	}
	return v, nil
}
