package ws

import "economy_server/internal/service"

// Message types. Domain events are pushed as domain.Event with their own type.
const (
	MsgPing  = "ping"
	MsgReady = "ready"
	MsgPong  = "pong"
	MsgError = "error"
)

// InboundMessage is anything a client sends.
type InboundMessage struct {
	Type string `json:"type"`
}

// ReadyPayload is the first frame after registration.
type ReadyPayload struct {
	Type    string                `json:"type"`
	Session *service.SessionStart `json:"session,omitempty"`
}

type ErrorPayload struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}
