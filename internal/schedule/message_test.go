package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMessageValidate(t *testing.T) {
	valid := Message{Subject: "hello", Body: "<p>hi</p>", ScheduleOn: 1704105000000}
	assert.NoError(t, valid.Validate())

	tests := []struct {
		name string
		msg  Message
	}{
		{"missing subject", Message{Body: "b", ScheduleOn: 1}},
		{"missing body", Message{Subject: "s", ScheduleOn: 1}},
		{"missing schedule_on", Message{Subject: "s", Body: "b"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.msg.Validate()
			assert.ErrorIs(t, err, ErrInvalidMessage)
		})
	}
}

func TestMessageScheduledAt(t *testing.T) {
	// 2024-01-01T10:30:00Z as epoch millis
	msg := Message{ScheduleOn: 1704105000000}
	want := time.Date(2024, 1, 1, 10, 30, 0, 0, time.UTC)
	assert.True(t, msg.ScheduledAt().Equal(want))
}

func TestDecodeMessage(t *testing.T) {
	raw := []byte(`{"subject":"news","body":"<p>hi</p>","schedule_on":1704105000000}`)
	msg, err := DecodeMessage(raw)
	require.NoError(t, err)
	assert.Equal(t, "news", msg.Subject)
	assert.Equal(t, "<p>hi</p>", msg.Body)
	assert.Equal(t, int64(1704105000000), msg.ScheduleOn)
}

func TestDecodeMessageCorrupt(t *testing.T) {
	tests := []struct {
		name string
		raw  []byte
	}{
		{"not json", []byte("not json at all")},
		{"wrong shape", []byte(`{"title":"x"}`)},
		{"empty object", []byte(`{}`)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeMessage(tt.raw)
			assert.ErrorIs(t, err, ErrCorruptContent)
		})
	}
}
