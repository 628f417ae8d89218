package schedule

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// ErrInvalidMessage marks a schedule request missing required fields.
var ErrInvalidMessage = errors.New("invalid message")

// ErrCorruptContent marks a stored blob that no longer parses into a Message.
var ErrCorruptContent = errors.New("corrupt message content")

// Message is the full scheduled-message payload, stored as an opaque JSON
// blob in the content store.
type Message struct {
	Subject    string `json:"subject"`
	Body       string `json:"body"`
	ScheduleOn int64  `json:"schedule_on"` // epoch millis
}

// Validate checks the fields required to schedule or deliver the message.
func (m Message) Validate() error {
	err := validation.ValidateStruct(&m,
		validation.Field(&m.Subject, validation.Required),
		validation.Field(&m.Body, validation.Required),
		validation.Field(&m.ScheduleOn, validation.Required, validation.Min(int64(1))),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidMessage, err)
	}
	return nil
}

// ScheduledAt returns the requested delivery time.
func (m Message) ScheduledAt() time.Time {
	return time.UnixMilli(m.ScheduleOn)
}

// DecodeMessage parses a stored content blob. A blob that fails to parse or
// lacks required fields is reported as corrupt, not as a validation error:
// by the time it is read back the write side has already vouched for it.
func DecodeMessage(raw []byte) (Message, error) {
	var m Message
	if err := json.Unmarshal(raw, &m); err != nil {
		return Message{}, fmt.Errorf("%w: %v", ErrCorruptContent, err)
	}
	if m.Subject == "" || m.Body == "" {
		return Message{}, fmt.Errorf("%w: missing subject or body", ErrCorruptContent)
	}
	return m, nil
}
