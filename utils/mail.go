package utils

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/smtp"
	"strings"
	"time"

	"github.com/Rahel786/QuickHire-sub000/models"
)

// ErrMailNotConfigured is returned by the fallback mailer used when no SMTP
// relay is configured.
var ErrMailNotConfigured = errors.New("smtp not configured")

// SMTPConfig describes the outbound relay.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// Configured reports whether enough is set to attempt delivery.
func (c SMTPConfig) Configured() bool {
	return c.Host != "" && c.Port != 0 && c.Username != "" && c.Password != ""
}

// SMTPMailer sends plain-text mail through an SMTP relay. Port 465 uses
// implicit TLS; other ports upgrade with STARTTLS when offered.
type SMTPMailer struct {
	cfg     SMTPConfig
	timeout time.Duration
}

func NewSMTPMailer(cfg SMTPConfig) *SMTPMailer {
	if cfg.From == "" {
		cfg.From = cfg.Username
	}
	return &SMTPMailer{cfg: cfg, timeout: 15 * time.Second}
}

func (m *SMTPMailer) SendOTP(ctx context.Context, to, code string, purpose models.OTPPurpose, validFor time.Duration) error {
	subject, body := otpMessage(code, purpose, validFor)
	return m.send(ctx, to, subject, body)
}

func (m *SMTPMailer) SendWelcome(ctx context.Context, to, name string) error {
	subject, body := welcomeMessage(name)
	return m.send(ctx, to, subject, body)
}

func (m *SMTPMailer) send(ctx context.Context, to, subject, body string) error {
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	client, err := m.dial(ctx)
	if err != nil {
		return fmt.Errorf("smtp dial: %w", err)
	}
	defer client.Close()

	auth := smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	if err := client.Auth(auth); err != nil {
		return fmt.Errorf("smtp auth: %w", err)
	}
	if err := client.Mail(parseAddress(m.cfg.From)); err != nil {
		return err
	}
	if err := client.Rcpt(to); err != nil {
		return err
	}
	w, err := client.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write([]byte(buildMessage(m.cfg.From, to, subject, body))); err != nil {
		_ = w.Close()
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	return client.Quit()
}

func (m *SMTPMailer) dial(ctx context.Context) (*smtp.Client, error) {
	addr := net.JoinHostPort(m.cfg.Host, fmt.Sprint(m.cfg.Port))
	tlsCfg := &tls.Config{ServerName: m.cfg.Host, MinVersion: tls.VersionTLS12}

	var conn net.Conn
	var err error
	if m.cfg.Port == 465 {
		d := &tls.Dialer{Config: tlsCfg}
		conn, err = d.DialContext(ctx, "tcp", addr)
	} else {
		var d net.Dialer
		conn, err = d.DialContext(ctx, "tcp", addr)
	}
	if err != nil {
		return nil, err
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	client, err := smtp.NewClient(conn, m.cfg.Host)
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	if m.cfg.Port != 465 {
		if ok, _ := client.Extension("STARTTLS"); ok {
			if err := client.StartTLS(tlsCfg); err != nil {
				_ = client.Close()
				return nil, err
			}
		}
	}
	return client, nil
}

// LogMailer stands in when SMTP is not configured. It logs the attempt and
// reports ErrMailNotConfigured so callers take their delivery-failure path.
type LogMailer struct {
	Logger *slog.Logger
}

func (m LogMailer) SendOTP(_ context.Context, to, _ string, purpose models.OTPPurpose, _ time.Duration) error {
	m.logger().Warn("otp email not sent", "to", to, "purpose", string(purpose), "reason", ErrMailNotConfigured)
	return ErrMailNotConfigured
}

func (m LogMailer) SendWelcome(_ context.Context, to, _ string) error {
	m.logger().Warn("welcome email not sent", "to", to, "reason", ErrMailNotConfigured)
	return ErrMailNotConfigured
}

func (m LogMailer) logger() *slog.Logger {
	if m.Logger == nil {
		return slog.Default()
	}
	return m.Logger
}

func otpMessage(code string, purpose models.OTPPurpose, validFor time.Duration) (string, string) {
	lifetime := formatLifetime(validFor)
	if purpose == models.PurposePasswordReset {
		return "Your QuickHire password reset code",
			fmt.Sprintf("Your password reset code is: %s\nThis code expires in %s.\n"+
				"If you did not request a reset, you can ignore this email.", code, lifetime)
	}
	return "Verify your QuickHire email",
		fmt.Sprintf("Your verification code is: %s\nThis code expires in %s.", code, lifetime)
}

// formatLifetime renders whole minutes as words and anything else as a
// duration. Zero falls back to the default lifetime.
func formatLifetime(d time.Duration) string {
	if d <= 0 {
		d = models.OTPDefaultTTL
	}
	switch {
	case d == time.Minute:
		return "1 minute"
	case d%time.Minute == 0:
		return fmt.Sprintf("%d minutes", int(d/time.Minute))
	default:
		return d.Round(time.Second).String()
	}
}

func welcomeMessage(name string) (string, string) {
	if name == "" {
		name = "there"
	}
	return "Welcome to QuickHire",
		fmt.Sprintf("Hi %s,\n\nYour account is ready. Explore colleges, read interview experiences "+
			"and build a learning plan for your next role.\n\nThe QuickHire team", name)
}

func buildMessage(from, to, subject, body string) string {
	headers := []string{
		"From: " + from,
		"To: " + to,
		"Subject: " + subject,
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=utf-8",
		"",
		body,
	}
	return strings.Join(headers, "\r\n")
}

func parseAddress(from string) string {
	start := strings.Index(from, "<")
	end := strings.Index(from, ">")
	if start >= 0 && end > start {
		return strings.TrimSpace(from[start+1 : end])
	}
	return strings.TrimSpace(from)
}
