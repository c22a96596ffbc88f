// Package hub fans websocket messages out to every connected client. New
// clients can be primed with the last message so they never start blank.
package hub

import "github.com/gofiber/websocket/v2"

// MessageType is the payload kind of a broadcast.
type MessageType int

const (
	// JSONMessage carries encoded JSON, sent as a text frame.
	JSONMessage MessageType = iota
	// BinaryMessage carries raw bytes such as JPEG frames.
	BinaryMessage
)

// frameType maps the payload kind to the websocket opcode.
func (t MessageType) frameType() int {
	if t == BinaryMessage {
		return websocket.BinaryMessage
	}
	return websocket.TextMessage
}

// Message is one broadcast payload. Data is shared between clients and
// must not be modified after Broadcast.
type Message struct {
	Type MessageType
	Data []byte
}

// NewJSONMessage wraps pre-encoded JSON.
func NewJSONMessage(data []byte) Message {
	return Message{Type: JSONMessage, Data: data}
}

// NewBinaryMessage wraps raw bytes.
func NewBinaryMessage(data []byte) Message {
	return Message{Type: BinaryMessage, Data: data}
}
