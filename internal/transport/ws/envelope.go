package ws

import (
	"encoding/json"
	"errors"
	"fmt"

	"livequiz/internal/model"
)

var (
	ErrMalformedMessage   = errors.New("malformed message")
	ErrUnknownMessageType = errors.New("unknown message type")
)

// Inbound is a decoded client message. Exactly one payload field is set,
// matching Type.
type Inbound struct {
	Type   model.MessageType
	Join   *model.JoinMessage
	Answer *model.AnswerMessage
	Ping   *model.PingMessage
}

// DecodeInbound parses a client frame into one of the accepted message kinds
func DecodeInbound(raw []byte) (*Inbound, error) {
	var env model.Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedMessage, err)
	}

	in := &Inbound{Type: env.Type}
	var target interface{}
	switch env.Type {
	case model.MsgJoin:
		in.Join = &model.JoinMessage{}
		target = in.Join
	case model.MsgAnswer:
		in.Answer = &model.AnswerMessage{}
		target = in.Answer
	case model.MsgPing:
		in.Ping = &model.PingMessage{}
		target = in.Ping
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownMessageType, env.Type)
	}

	if len(env.Data) > 0 && string(env.Data) != "null" {
		if err := json.Unmarshal(env.Data, target); err != nil {
			return nil, fmt.Errorf("%w: %s data: %v", ErrMalformedMessage, env.Type, err)
		}
	}
	return in, nil
}
