package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Rahel786/QuickHire-sub000/models"
	"github.com/Rahel786/QuickHire-sub000/store/memstore"
	"github.com/Rahel786/QuickHire-sub000/utils"
)

var errMailDown = errors.New("mail relay down")

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newClock() *fakeClock {
	return &fakeClock{t: time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

type sentOTP struct {
	to       string
	code     string
	purpose  models.OTPPurpose
	validFor time.Duration
}

type fakeMailer struct {
	mu          sync.Mutex
	otps        []sentOTP
	welcomes    []string
	failOTP     bool
	failWelcome bool
}

func (m *fakeMailer) SendOTP(_ context.Context, to, code string, purpose models.OTPPurpose, validFor time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failOTP {
		return errMailDown
	}
	m.otps = append(m.otps, sentOTP{to: to, code: code, purpose: purpose, validFor: validFor})
	return nil
}

func (m *fakeMailer) SendWelcome(_ context.Context, to, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWelcome {
		return errMailDown
	}
	m.welcomes = append(m.welcomes, to)
	return nil
}

// lastCode returns the most recent code mailed to to.
func (m *fakeMailer) lastCode(t *testing.T, to string) string {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := len(m.otps) - 1; i >= 0; i-- {
		if m.otps[i].to == to {
			return m.otps[i].code
		}
	}
	t.Fatalf("no otp mailed to %s", to)
	return ""
}

func (m *fakeMailer) otpCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.otps)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type authFixture struct {
	svc    *AuthService
	creds  *Credentials
	otps   *OTPManager
	store  *memstore.Store
	mailer *fakeMailer
	tokens *utils.TokenManager
	clock  *fakeClock
}

func newAuthFixture(t *testing.T, opts AuthOptions, otpOpts ...OTPOption) *authFixture {
	t.Helper()
	clock := newClock()
	st := memstore.New(clock.Now)

	creds, err := NewCredentials(st.Users)
	require.NoError(t, err)
	otps, err := NewOTPManager(st.OTPs, append([]OTPOption{WithOTPClock(clock.Now)}, otpOpts...)...)
	require.NoError(t, err)
	tm, err := utils.NewTokenManager("test-secret", time.Hour)
	require.NoError(t, err)
	tokens := tm.WithClock(clock.Now)

	mailer := &fakeMailer{}
	opts.Now = clock.Now
	if opts.Logger == nil {
		opts.Logger = discardLogger()
	}
	svc, err := NewAuthService(creds, otps, mailer, tokens, opts)
	require.NoError(t, err)

	return &authFixture{svc: svc, creds: creds, otps: otps, store: st, mailer: mailer, tokens: tokens, clock: clock}
}

func studentInput(email string) RegistrationInput {
	return RegistrationInput{
		Email:     email,
		Password:  "secret123",
		Name:      "Asha Rao",
		Role:      models.RoleStudent,
		College:   "IIT Madras",
		BatchYear: 2026,
	}
}

// registerUser creates an account directly and returns it.
func registerUser(t *testing.T, f *authFixture, email, role string) *models.User {
	t.Helper()
	in := studentInput(email)
	if role == models.RoleAdmin {
		u := &models.User{Name: "Admin", Email: email, Role: models.RoleAdmin, IsActive: true}
		require.NoError(t, f.creds.CreateUser(context.Background(), u, "secret123"))
		return u
	}
	if role != "" && role != models.RoleStudent {
		in.Role = role
		in.CompanyName = "Acme"
		years := 3
		in.YearsExperience = &years
	}
	res, err := f.svc.Register(context.Background(), in)
	require.NoError(t, err)
	return res.User
}
