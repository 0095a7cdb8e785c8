package service

import "livequiz/internal/model"

// Broadcaster delivers envelopes to live sessions (implemented by ws.Hub, avoids import cycle).
// Delivery never blocks and never fails loudly: false / a short count means a peer missed it.
type Broadcaster interface {
	SendTo(sessionID string, msgType model.MessageType, payload interface{}) bool
	BroadcastAll(msgType model.MessageType, payload interface{}) int
}

// RoomObserver receives committed room events. Publish must not block.
type RoomObserver interface {
	Publish(ev *model.RoomEvent)
}
