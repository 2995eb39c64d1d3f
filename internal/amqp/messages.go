// Package amqp carries expense confirmations over RabbitMQ so that learning
// can happen in a separate worker process.
package amqp

import (
	"encoding/json"
	"fmt"

	"fjacquet/expense-categorizer/internal/models"
)

// ConfirmationMessage is the wire form of a models.Confirmation.
type ConfirmationMessage struct {
	models.Confirmation
	// Version allows consumers to reject payloads they do not understand.
	Version int `json:"version"`
}

// MessageVersion is the current ConfirmationMessage version.
const MessageVersion = 1

// NewConfirmationMessage wraps c.
func NewConfirmationMessage(c models.Confirmation) *ConfirmationMessage {
	return &ConfirmationMessage{Confirmation: c, Version: MessageVersion}
}

// ToJSON converts the message to JSON bytes
func (m *ConfirmationMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// ConfirmationMessageFromJSON decodes and validates a message.
func ConfirmationMessageFromJSON(data []byte) (*ConfirmationMessage, error) {
	var msg ConfirmationMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if msg.Version != MessageVersion {
		return nil, fmt.Errorf("unsupported message version %d", msg.Version)
	}
	if msg.UserID == "" || msg.Category == "" {
		return nil, fmt.Errorf("message is missing userId or category")
	}
	return &msg, nil
}
