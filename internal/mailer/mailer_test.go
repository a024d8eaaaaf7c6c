package mailer

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildMessage(t *testing.T) {
	msg := string(buildMessage("noreply@yamdb.local", "ann@example.com", "Hi", "body"))

	assert.True(t, strings.HasPrefix(msg, "From: noreply@yamdb.local\r\nTo: ann@example.com\r\n"))
	assert.Contains(t, msg, "Subject: Hi\r\n")
	assert.True(t, strings.HasSuffix(msg, "\r\n\r\nbody"))
}

func TestConfirmationBodyCarriesCode(t *testing.T) {
	body := confirmationBody("ann", "042117")
	assert.Contains(t, body, "ann")
	assert.Contains(t, body, "042117")
}

func TestLogSender(t *testing.T) {
	var buf bytes.Buffer
	s := NewLogSender(slog.New(slog.NewTextHandler(&buf, nil)))

	require.NoError(t, s.SendConfirmationCode(context.Background(), "ann@example.com", "ann", "123456"))
	assert.Contains(t, buf.String(), "code=123456")
	assert.Contains(t, buf.String(), "to=ann@example.com")
}

func TestSMTPSender_DialFailure(t *testing.T) {
	// port 1 on localhost is closed on any sane test host
	s := NewSMTPSender(Config{Host: "127.0.0.1", Port: 1, From: "noreply@yamdb.local"})

	err := s.SendConfirmationCode(context.Background(), "ann@example.com", "ann", "123456")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ann@example.com")
}

func TestNewSMTPSender_DefaultPort(t *testing.T) {
	s := NewSMTPSender(Config{Host: "smtp.example.com"})
	assert.Equal(t, 587, s.cfg.Port)
}
