package services

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rahel786/QuickHire-sub000/models"
	"github.com/Rahel786/QuickHire-sub000/store/memstore"
)

type outcomeLog struct {
	mu       sync.Mutex
	outcomes []string
}

func (l *outcomeLog) observe(_ models.OTPPurpose, outcome string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.outcomes = append(l.outcomes, outcome)
}

func sequenceGenerator(codes ...string) func() (string, error) {
	var i int
	var mu sync.Mutex
	return func() (string, error) {
		mu.Lock()
		defer mu.Unlock()
		code := codes[i%len(codes)]
		i++
		return code, nil
	}
}

func newOTPFixture(t *testing.T, opts ...OTPOption) (*OTPManager, *memstore.Store, *fakeClock) {
	t.Helper()
	clock := newClock()
	st := memstore.New(clock.Now)
	m, err := NewOTPManager(st.OTPs, append([]OTPOption{WithOTPClock(clock.Now)}, opts...)...)
	require.NoError(t, err)
	return m, st, clock
}

func TestOTPManager_IssueKeepsSingleLiveCode(t *testing.T) {
	ctx := context.Background()
	m, st, _ := newOTPFixture(t, WithOTPGenerator(sequenceGenerator("111111", "222222")))

	first, err := m.Issue(ctx, "A@Example.com ", models.PurposeRegistration)
	require.NoError(t, err)
	assert.Equal(t, "a@example.com", first.Email)

	_, err = m.Issue(ctx, "a@example.com", models.PurposeRegistration)
	require.NoError(t, err)

	records := st.OTPs.All()
	require.Len(t, records, 1)
	assert.Equal(t, "222222", records[0].Code)

	_, err = m.Check(ctx, "a@example.com", models.PurposeRegistration, "111111")
	assert.Equal(t, CodeOTPMismatch, ErrorCode(err))

	rec, err := m.Check(ctx, "a@example.com", models.PurposeRegistration, "222222")
	require.NoError(t, err)
	assert.Equal(t, records[0].ID, rec.ID)
}

func TestOTPManager_PurposesAreIndependent(t *testing.T) {
	ctx := context.Background()
	m, st, _ := newOTPFixture(t, WithOTPGenerator(sequenceGenerator("111111", "222222")))

	_, err := m.Issue(ctx, "a@example.com", models.PurposeRegistration)
	require.NoError(t, err)
	_, err = m.Issue(ctx, "a@example.com", models.PurposePasswordReset)
	require.NoError(t, err)
	assert.Len(t, st.OTPs.All(), 2)

	_, err = m.Check(ctx, "a@example.com", models.PurposePasswordReset, "111111")
	assert.Equal(t, CodeOTPMismatch, ErrorCode(err))
}

func TestOTPManager_IssueRejectsUnknownPurpose(t *testing.T) {
	m, _, _ := newOTPFixture(t)
	_, err := m.Issue(context.Background(), "a@example.com", models.OTPPurpose("login"))
	assert.Equal(t, CodeValidation, ErrorCode(err))
}

func TestOTPManager_ExpiresAtTTL(t *testing.T) {
	ctx := context.Background()
	m, _, clock := newOTPFixture(t, WithOTPGenerator(sequenceGenerator("123456")))

	rec, err := m.Issue(ctx, "a@example.com", models.PurposeRegistration)
	require.NoError(t, err)
	assert.Equal(t, clock.Now().Add(models.OTPDefaultTTL), rec.ExpiresAt)

	clock.Advance(models.OTPDefaultTTL)
	_, err = m.Check(ctx, "a@example.com", models.PurposeRegistration, "123456")
	require.NoError(t, err, "a code is still valid at its expiry instant")

	clock.Advance(time.Second)
	_, err = m.Check(ctx, "a@example.com", models.PurposeRegistration, "123456")
	assert.Equal(t, CodeOTPExpired, ErrorCode(err))
}

func TestOTPManager_CustomTTL(t *testing.T) {
	ctx := context.Background()
	m, _, clock := newOTPFixture(t, WithOTPTTL(time.Minute), WithOTPGenerator(sequenceGenerator("123456")))

	_, err := m.Issue(ctx, "a@example.com", models.PurposeRegistration)
	require.NoError(t, err)

	clock.Advance(2 * time.Minute)
	_, err = m.Check(ctx, "a@example.com", models.PurposeRegistration, "123456")
	assert.Equal(t, CodeOTPExpired, ErrorCode(err))
}

func TestOTPManager_AttemptCeiling(t *testing.T) {
	ctx := context.Background()
	m, _, _ := newOTPFixture(t, WithOTPGenerator(sequenceGenerator("123456")))

	_, err := m.Issue(ctx, "a@example.com", models.PurposeRegistration)
	require.NoError(t, err)

	for i := 1; i <= models.OTPMaxAttempts; i++ {
		_, err := m.Check(ctx, "a@example.com", models.PurposeRegistration, "000000")
		require.Equal(t, CodeOTPMismatch, ErrorCode(err), "attempt %d", i)
		assert.Contains(t, err.Error(), fmt.Sprintf("%d attempts remaining", models.OTPMaxAttempts-i))
	}

	_, err = m.Check(ctx, "a@example.com", models.PurposeRegistration, "123456")
	assert.Equal(t, CodeOTPAttemptsExceeded, ErrorCode(err), "the right code is refused once the ceiling is hit")

	_, err = m.Issue(ctx, "a@example.com", models.PurposeRegistration)
	require.NoError(t, err)
	_, err = m.Check(ctx, "a@example.com", models.PurposeRegistration, "123456")
	assert.NoError(t, err, "a fresh code resets the counter")
}

func TestOTPManager_CheckOrder(t *testing.T) {
	ctx := context.Background()
	m, _, clock := newOTPFixture(t, WithOTPGenerator(sequenceGenerator("123456")))

	_, err := m.Check(ctx, "a@example.com", models.PurposeRegistration, "123456")
	assert.Equal(t, CodeOTPNotFound, ErrorCode(err))

	_, err = m.Issue(ctx, "a@example.com", models.PurposeRegistration)
	require.NoError(t, err)
	for i := 0; i < models.OTPMaxAttempts; i++ {
		_, _ = m.Check(ctx, "a@example.com", models.PurposeRegistration, "000000")
	}
	clock.Advance(time.Hour)

	_, err = m.Check(ctx, "a@example.com", models.PurposeRegistration, "000000")
	assert.Equal(t, CodeOTPExpired, ErrorCode(err), "expiry is reported before the attempt ceiling")
}

func TestOTPManager_ConsumeIsSingleUse(t *testing.T) {
	ctx := context.Background()
	log := &outcomeLog{}
	m, _, _ := newOTPFixture(t, WithOTPGenerator(sequenceGenerator("123456")), WithOTPObserver(log.observe))

	_, err := m.Issue(ctx, "a@example.com", models.PurposePasswordReset)
	require.NoError(t, err)

	require.NoError(t, m.Consume(ctx, "a@example.com", models.PurposePasswordReset, "123456"))
	err = m.Consume(ctx, "a@example.com", models.PurposePasswordReset, "123456")
	assert.Equal(t, CodeOTPNotFound, ErrorCode(err))

	assert.Equal(t, []string{OTPIssued, OTPVerified, OTPNotFound}, log.outcomes)
}

func TestOTPManager_ConcurrentConsumeHasOneWinner(t *testing.T) {
	ctx := context.Background()
	m, _, _ := newOTPFixture(t, WithOTPGenerator(sequenceGenerator("123456")))

	_, err := m.Issue(ctx, "a@example.com", models.PurposeRegistration)
	require.NoError(t, err)

	var wins atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if m.Consume(ctx, "a@example.com", models.PurposeRegistration, "123456") == nil {
				wins.Add(1)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), wins.Load())
}

// lockstepOTPs holds the first n Latest callers until all of them have read,
// so they see the same attempt count. Later calls pass straight through.
type lockstepOTPs struct {
	OTPRepository
	n       int32
	seen    atomic.Int32
	release chan struct{}
}

func newLockstepOTPs(repo OTPRepository, n int) *lockstepOTPs {
	return &lockstepOTPs{OTPRepository: repo, n: int32(n), release: make(chan struct{})}
}

func (l *lockstepOTPs) Latest(ctx context.Context, email string, purpose models.OTPPurpose) (*models.OTPRecord, error) {
	rec, err := l.OTPRepository.Latest(ctx, email, purpose)
	if c := l.seen.Add(1); c <= l.n {
		if c == l.n {
			close(l.release)
		}
		<-l.release
	}
	return rec, err
}

func TestOTPManager_ParallelWrongGuessesStopAtCeiling(t *testing.T) {
	ctx := context.Background()
	clock := newClock()
	st := memstore.New(clock.Now)

	const guesses = 20
	gated := newLockstepOTPs(st.OTPs, guesses)
	m, err := NewOTPManager(gated, WithOTPClock(clock.Now), WithOTPGenerator(sequenceGenerator("123456")))
	require.NoError(t, err)

	_, err = m.Issue(ctx, "a@example.com", models.PurposeRegistration)
	require.NoError(t, err)

	var mismatches, exceeded atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < guesses; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := m.Check(ctx, "a@example.com", models.PurposeRegistration, "000000")
			switch ErrorCode(err) {
			case CodeOTPMismatch:
				mismatches.Add(1)
			case CodeOTPAttemptsExceeded:
				exceeded.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(models.OTPMaxAttempts), mismatches.Load(), "only the allowed number of guesses is compared")
	assert.Equal(t, int32(guesses-models.OTPMaxAttempts), exceeded.Load())

	records := st.OTPs.All()
	require.Len(t, records, 1)
	assert.Equal(t, models.OTPMaxAttempts, records[0].Attempts)

	direct, err := NewOTPManager(st.OTPs, WithOTPClock(clock.Now))
	require.NoError(t, err)
	_, err = direct.Check(ctx, "a@example.com", models.PurposeRegistration, "123456")
	assert.Equal(t, CodeOTPAttemptsExceeded, ErrorCode(err))
}

func TestOTPManager_CorrectCodeDoesNotCostAnAttempt(t *testing.T) {
	ctx := context.Background()
	m, st, _ := newOTPFixture(t, WithOTPGenerator(sequenceGenerator("123456")))

	_, err := m.Issue(ctx, "a@example.com", models.PurposeRegistration)
	require.NoError(t, err)

	_, err = m.Check(ctx, "a@example.com", models.PurposeRegistration, "000000")
	require.Equal(t, CodeOTPMismatch, ErrorCode(err))

	rec, err := m.Check(ctx, "a@example.com", models.PurposeRegistration, "123456")
	require.NoError(t, err)
	assert.Equal(t, 1, rec.Attempts)
	assert.Equal(t, 1, st.OTPs.All()[0].Attempts)
}

func TestOTPManager_Withdraw(t *testing.T) {
	ctx := context.Background()
	m, st, _ := newOTPFixture(t)

	_, err := m.Issue(ctx, "a@example.com", models.PurposeRegistration)
	require.NoError(t, err)
	require.NoError(t, m.Withdraw(ctx, "A@example.com", models.PurposeRegistration))
	assert.Empty(t, st.OTPs.All())
}

func TestNewOTPManager_RequiresRepo(t *testing.T) {
	_, err := NewOTPManager(nil)
	assert.Error(t, err)
}
