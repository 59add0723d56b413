package mailer

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/emersion/go-message/mail"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompose_TextBodyAndCSVAttachment(t *testing.T) {
	msg := Message{
		To:      "ops@acme.test",
		CC:      []string{"audit@acme.test", " "},
		Subject: "Series notification LOT-1",
		Body:    "2 devices notified.",
		Attachments: []Attachment{{
			Filename:    "notificacion_LOT-1.csv",
			ContentType: "text/csv;charset=utf-8",
			Data:        []byte("IMEI\n861888082667623\n"),
		}},
	}

	raw, err := Compose("OSE Platform", "noreply@ose.test", msg, time.Date(2026, 5, 4, 9, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	mr, err := mail.CreateReader(bytes.NewReader(raw))
	require.NoError(t, err)

	subject, err := mr.Header.Subject()
	require.NoError(t, err)
	assert.Equal(t, "Series notification LOT-1", subject)

	cc, err := mr.Header.AddressList("Cc")
	require.NoError(t, err)
	require.Len(t, cc, 1)
	assert.Equal(t, "audit@acme.test", cc[0].Address)

	var body, attachment, filename string
	for {
		p, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			break
		}
		require.NoError(t, err)
		data, err := io.ReadAll(p.Body)
		require.NoError(t, err)

		switch h := p.Header.(type) {
		case *mail.InlineHeader:
			body = string(data)
		case *mail.AttachmentHeader:
			filename, _ = h.Filename()
			attachment = string(data)
		}
	}

	assert.Equal(t, "2 devices notified.", body)
	assert.Equal(t, "notificacion_LOT-1.csv", filename)
	assert.Equal(t, "IMEI\n861888082667623\n", attachment)
}

func TestRecipients(t *testing.T) {
	m := Message{To: "a@x.test", CC: []string{"", "b@x.test"}}
	assert.Equal(t, []string{"a@x.test", "b@x.test"}, m.Recipients())
}

func TestSplitContentType(t *testing.T) {
	mt, params := splitContentType("text/csv;charset=utf-8")
	assert.Equal(t, "text/csv", mt)
	assert.Equal(t, map[string]string{"charset": "utf-8"}, params)

	mt, _ = splitContentType("")
	assert.Equal(t, "application/octet-stream", mt)
}

func TestSMTPMailer_NotConfigured(t *testing.T) {
	m := NewSMTPMailer(SMTPConfig{})
	err := m.Send(context.Background(), Message{To: "a@x.test"})
	assert.ErrorIs(t, err, ErrNotConfigured)
}
