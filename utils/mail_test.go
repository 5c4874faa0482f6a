package utils

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/Rahel786/QuickHire-sub000/models"
)

func TestSMTPConfig_Configured(t *testing.T) {
	t.Parallel()

	full := SMTPConfig{Host: "smtp.example.com", Port: 587, Username: "u", Password: "p"}
	assert.True(t, full.Configured())

	noPass := full
	noPass.Password = ""
	assert.False(t, noPass.Configured())

	assert.False(t, SMTPConfig{}.Configured())
}

func TestNewSMTPMailer_DefaultsFrom(t *testing.T) {
	t.Parallel()

	m := NewSMTPMailer(SMTPConfig{Host: "h", Port: 25, Username: "bot@example.com", Password: "p"})
	assert.Equal(t, "bot@example.com", m.cfg.From)
}

func TestOTPMessage(t *testing.T) {
	t.Parallel()

	subject, body := otpMessage("123456", models.PurposeRegistration, 10*time.Minute)
	assert.Equal(t, "Verify your QuickHire email", subject)
	assert.Contains(t, body, "123456")
	assert.Contains(t, body, "expires in 10 minutes")

	subject, body = otpMessage("654321", models.PurposePasswordReset, 3*time.Minute)
	assert.Contains(t, subject, "password reset")
	assert.Contains(t, body, "654321")
	assert.Contains(t, body, "expires in 3 minutes")
}

func TestFormatLifetime(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   time.Duration
		want string
	}{
		{0, "10 minutes"},
		{time.Minute, "1 minute"},
		{15 * time.Minute, "15 minutes"},
		{90 * time.Second, "1m30s"},
		{45 * time.Second, "45s"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, formatLifetime(tc.in), tc.in.String())
	}
}

func TestWelcomeMessage(t *testing.T) {
	t.Parallel()

	_, body := welcomeMessage("Asha")
	assert.True(t, strings.HasPrefix(body, "Hi Asha,"))

	_, body = welcomeMessage("")
	assert.True(t, strings.HasPrefix(body, "Hi there,"))
}

func TestBuildMessage(t *testing.T) {
	t.Parallel()

	msg := buildMessage("QuickHire <bot@example.com>", "a@example.com", "Hello", "body text")
	lines := strings.Split(msg, "\r\n")
	assert.Equal(t, "From: QuickHire <bot@example.com>", lines[0])
	assert.Equal(t, "To: a@example.com", lines[1])
	assert.Equal(t, "Subject: Hello", lines[2])
	assert.Equal(t, "", lines[5])
	assert.Equal(t, "body text", lines[6])
}

func TestParseAddress(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"QuickHire <bot@example.com>": "bot@example.com",
		"bot@example.com":             "bot@example.com",
		"  bot@example.com ":          "bot@example.com",
		"broken <bot@example.com":     "broken <bot@example.com",
	}
	for in, want := range cases {
		assert.Equal(t, want, parseAddress(in), in)
	}
}

func TestLogMailer_ReportsNotConfigured(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	m := LogMailer{Logger: slog.New(slog.NewTextHandler(&buf, nil))}

	err := m.SendOTP(context.Background(), "a@example.com", "123456", models.PurposeRegistration, time.Minute)
	assert.ErrorIs(t, err, ErrMailNotConfigured)
	assert.NotContains(t, buf.String(), "123456")

	err = m.SendWelcome(context.Background(), "a@example.com", "A")
	assert.ErrorIs(t, err, ErrMailNotConfigured)
}
