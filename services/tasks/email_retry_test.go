package tasks

import (
	"encoding/json"
	"testing"

	"oseplatform/models"
	"oseplatform/services/mailer"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEmailRetryTask(t *testing.T) {
	payload := models.EmailRetryPayload{NotificationID: "n-1", To: "ops@acme.test", Filename: "a.csv", CSV: "IMEI\n"}

	task, opts, err := NewEmailRetryTask(payload)
	require.NoError(t, err)
	assert.Equal(t, TypeEmailRetry, task.Type())
	assert.Len(t, opts, 3)

	var decoded models.EmailRetryPayload
	require.NoError(t, json.Unmarshal(task.Payload(), &decoded))
	assert.Equal(t, payload, decoded)
}

func TestPayloadMessageRoundTrip(t *testing.T) {
	msg := mailer.Message{
		To:      "ops@acme.test",
		CC:      []string{"audit@acme.test"},
		Subject: "s",
		Body:    "b",
		Attachments: []mailer.Attachment{{
			Filename:    "n.csv",
			ContentType: "text/csv;charset=utf-8",
			Data:        []byte("IMEI\n1\n"),
		}},
	}

	got := MessageFromPayload(EmailRetryPayloadFor("n-1", msg))

	assert.Equal(t, msg, got)
}
