package services

import (
	"context"
	"errors"
	"time"

	"github.com/samber/oops"

	"github.com/Rahel786/QuickHire-sub000/models"
	"github.com/Rahel786/QuickHire-sub000/store"
	"github.com/Rahel786/QuickHire-sub000/utils"
)

// OTP outcomes reported to the observer.
const (
	OTPIssued           = "issued"
	OTPVerified         = "verified"
	OTPNotFound         = "not_found"
	OTPExpired          = "expired"
	OTPAttemptsExceeded = "attempts_exceeded"
	OTPMismatch         = "mismatch"
)

// OTPObserver is told about every issue and check outcome.
type OTPObserver func(purpose models.OTPPurpose, outcome string)

// OTPManager is the passcode lifecycle on top of an OTPRepository: at most one
// live code per (email, purpose), a fixed expiry and an attempt ceiling.
type OTPManager struct {
	repo     OTPRepository
	ttl      time.Duration
	now      func() time.Time
	generate func() (string, error)
	observe  OTPObserver
}

// OTPOption customizes an OTPManager.
type OTPOption func(*OTPManager)

// WithOTPClock sets the time source used for expiry.
func WithOTPClock(now func() time.Time) OTPOption {
	return func(m *OTPManager) { m.now = now }
}

// WithOTPTTL overrides the default ten minute lifetime.
func WithOTPTTL(ttl time.Duration) OTPOption {
	return func(m *OTPManager) {
		if ttl > 0 {
			m.ttl = ttl
		}
	}
}

// WithOTPGenerator replaces the random code source.
func WithOTPGenerator(gen func() (string, error)) OTPOption {
	return func(m *OTPManager) { m.generate = gen }
}

// WithOTPObserver registers an outcome observer.
func WithOTPObserver(o OTPObserver) OTPOption {
	return func(m *OTPManager) { m.observe = o }
}

func NewOTPManager(repo OTPRepository, opts ...OTPOption) (*OTPManager, error) {
	if repo == nil {
		return nil, errors.New("otp repository is required")
	}
	m := &OTPManager{
		repo:     repo,
		ttl:      models.OTPDefaultTTL,
		now:      time.Now,
		generate: utils.GenerateOTP,
		observe:  func(models.OTPPurpose, string) {},
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// Issue replaces every record for (email, purpose) with a fresh code.
func (m *OTPManager) Issue(ctx context.Context, email string, purpose models.OTPPurpose) (*models.OTPRecord, error) {
	if !purpose.Valid() {
		return nil, validationError("invalid otp type %q", purpose)
	}
	email = NormalizeEmail(email)

	if err := m.repo.DeleteFor(ctx, email, purpose); err != nil {
		return nil, internal("DeleteFor", err)
	}

	code, err := m.generate()
	if err != nil {
		return nil, internal("GenerateOTP", err)
	}

	now := m.now().UTC()
	rec := &models.OTPRecord{
		Email:     email,
		Code:      code,
		Purpose:   purpose,
		ExpiresAt: now.Add(m.ttl),
		CreatedAt: now,
	}
	if err := m.repo.Insert(ctx, rec); err != nil {
		return nil, internal("InsertOTP", err)
	}
	m.observe(purpose, OTPIssued)
	return rec, nil
}

// Withdraw removes every record for (email, purpose).
func (m *OTPManager) Withdraw(ctx context.Context, email string, purpose models.OTPPurpose) error {
	if err := m.repo.DeleteFor(ctx, NormalizeEmail(email), purpose); err != nil {
		return internal("DeleteFor", err)
	}
	return nil
}

// Check validates code against the latest unverified record without
// consuming it. Every comparison first reserves an attempt, so parallel
// guesses cannot exceed the ceiling; a correct code gives its attempt back.
func (m *OTPManager) Check(ctx context.Context, email string, purpose models.OTPPurpose, code string) (*models.OTPRecord, error) {
	email = NormalizeEmail(email)

	rec, err := m.repo.Latest(ctx, email, purpose)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			m.observe(purpose, OTPNotFound)
			return nil, oops.Code(CodeOTPNotFound).With("email", email).
				Errorf("no pending OTP for this email, please request a new one")
		}
		return nil, internal("LatestOTP", err)
	}

	if rec.Expired(m.now()) {
		m.observe(purpose, OTPExpired)
		return nil, oops.Code(CodeOTPExpired).With("email", email).
			Errorf("OTP has expired, please request a new one")
	}

	if rec.Attempts >= models.OTPMaxAttempts {
		return nil, m.attemptsExceeded(email, purpose)
	}

	reserved, err := m.repo.ReserveAttempt(ctx, rec.ID, models.OTPMaxAttempts)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			return nil, internal("ReserveAttempt", err)
		}
		// The ceiling was reached meanwhile, or the record was retired.
		if _, lerr := m.repo.Latest(ctx, email, purpose); errors.Is(lerr, store.ErrNotFound) {
			m.observe(purpose, OTPNotFound)
			return nil, oops.Code(CodeOTPNotFound).With("email", email).
				Errorf("no pending OTP for this email, please request a new one")
		}
		return nil, m.attemptsExceeded(email, purpose)
	}

	if reserved.Code != code {
		m.observe(purpose, OTPMismatch)
		remaining := models.OTPMaxAttempts - reserved.Attempts
		return nil, oops.Code(CodeOTPMismatch).With("email", email).
			With("attempts", reserved.Attempts).
			Errorf("invalid OTP, %d attempts remaining", remaining)
	}

	if err := m.repo.ReleaseAttempt(ctx, reserved.ID); err != nil && !errors.Is(err, store.ErrNotFound) {
		return nil, internal("ReleaseAttempt", err)
	}
	reserved.Attempts--
	return reserved, nil
}

func (m *OTPManager) attemptsExceeded(email string, purpose models.OTPPurpose) error {
	m.observe(purpose, OTPAttemptsExceeded)
	return oops.Code(CodeOTPAttemptsExceeded).With("email", email).
		Errorf("too many failed attempts, please request a new OTP")
}

// MarkVerified retires a record returned by Check. Losing a race with
// another verifier reads as the record being gone.
func (m *OTPManager) MarkVerified(ctx context.Context, rec *models.OTPRecord) error {
	if err := m.repo.MarkVerified(ctx, rec.ID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			m.observe(rec.Purpose, OTPNotFound)
			return oops.Code(CodeOTPNotFound).With("email", rec.Email).
				Errorf("no pending OTP for this email, please request a new one")
		}
		return internal("MarkVerified", err)
	}
	m.observe(rec.Purpose, OTPVerified)
	return nil
}

// Consume checks code and, on success, marks the record verified.
func (m *OTPManager) Consume(ctx context.Context, email string, purpose models.OTPPurpose, code string) error {
	rec, err := m.Check(ctx, email, purpose, code)
	if err != nil {
		return err
	}
	return m.MarkVerified(ctx, rec)
}
