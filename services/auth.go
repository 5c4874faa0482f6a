package services

import (
	"context"
	"errors"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"github.com/samber/oops"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Rahel786/QuickHire-sub000/models"
	"github.com/Rahel786/QuickHire-sub000/utils"
)

// MinPasswordLength is the shortest accepted password.
const MinPasswordLength = 6

// ForgotPasswordMessage is returned whether or not the email is registered.
const ForgotPasswordMessage = "If an account exists for this email, a password reset code has been sent"

// Mailer delivers the notification emails of the auth flow.
type Mailer interface {
	SendOTP(ctx context.Context, to, code string, purpose models.OTPPurpose, validFor time.Duration) error
	SendWelcome(ctx context.Context, to, name string) error
}

// TokenIssuer signs session tokens.
type TokenIssuer interface {
	Issue(userID, email string) (string, error)
}

// DemoAccount is a credential pair that provisions a real user on its first
// successful login.
type DemoAccount struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"displayName"`
	Role        string `json:"role,omitempty"`
}

// AuthOptions configures an AuthService.
type AuthOptions struct {
	// Production disables every development convenience, most importantly
	// echoing OTP codes back to the caller.
	Production   bool
	DemoAccounts []DemoAccount
	// ForceOnboardingOnEmptyUpdate makes a profile update with no recognized
	// field mark onboarding complete instead of failing.
	ForceOnboardingOnEmptyUpdate bool
	Logger                       *slog.Logger
	Now                          func() time.Time
}

// AuthResult is returned by every call that signs a user in.
type AuthResult struct {
	User  *models.User `json:"user"`
	Token string       `json:"token"`
}

// SendOTPResult describes an issued code. DevCode is only set outside
// production when the email could not be delivered.
type SendOTPResult struct {
	Message   string    `json:"message"`
	Email     string    `json:"email"`
	ExpiresAt time.Time `json:"expiresAt"`
	DevCode   string    `json:"devOtp,omitempty"`
}

// RegistrationInput carries the fields of a new account.
type RegistrationInput struct {
	Email           string
	Password        string
	Name            string
	Role            string
	College         string
	BatchYear       int
	YearsExperience *int
	CompanyName     string
	TechnicalSkills []string
	InterestedRoles []string
}

// ProfileUpdate is a sparse profile change. Nil fields are untouched.
type ProfileUpdate struct {
	Name                *string
	College             *string
	BatchYear           *int
	TechnicalSkills     *[]string
	InterestedRoles     *[]string
	OnboardingCompleted *bool
}

// AuthService orchestrates registration, login, password reset and profile
// management.
type AuthService struct {
	creds  *Credentials
	otps   *OTPManager
	mailer Mailer
	tokens TokenIssuer
	opts   AuthOptions
	log    *slog.Logger
}

func NewAuthService(creds *Credentials, otps *OTPManager, mailer Mailer, tokens TokenIssuer, opts AuthOptions) (*AuthService, error) {
	if creds == nil {
		return nil, errors.New("credential store is required")
	}
	if otps == nil {
		return nil, errors.New("otp manager is required")
	}
	if mailer == nil {
		return nil, errors.New("mailer is required")
	}
	if tokens == nil {
		return nil, errors.New("token issuer is required")
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthService{
		creds:  creds,
		otps:   otps,
		mailer: mailer,
		tokens: tokens,
		opts:   opts,
		log:    logger.With("component", "auth"),
	}, nil
}

// SendOTP issues a code for purpose and emails it. Registration discloses an
// existing account; password reset requires one.
func (s *AuthService) SendOTP(ctx context.Context, email string, purpose models.OTPPurpose) (*SendOTPResult, error) {
	email = NormalizeEmail(email)
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if !purpose.Valid() {
		return nil, validationError("type must be %q or %q", models.PurposeRegistration, models.PurposePasswordReset)
	}

	exists, err := s.creds.Exists(ctx, email)
	if err != nil {
		return nil, err
	}
	switch {
	case purpose == models.PurposeRegistration && exists:
		return nil, duplicateEmail(email)
	case purpose == models.PurposePasswordReset && !exists:
		return nil, oops.Code(CodeNotFound).With("email", email).Errorf("no account found with this email")
	}

	rec, err := s.otps.Issue(ctx, email, purpose)
	if err != nil {
		return nil, err
	}

	res := &SendOTPResult{
		Message:   "OTP sent to your email",
		Email:     email,
		ExpiresAt: rec.ExpiresAt,
	}

	if err := s.mailer.SendOTP(ctx, email, rec.Code, purpose, rec.ExpiresAt.Sub(rec.CreatedAt)); err != nil {
		if s.opts.Production {
			if werr := s.otps.Withdraw(ctx, email, purpose); werr != nil {
				utils.LogError(s.log, "withdraw undelivered otp", werr)
			}
			utils.LogError(s.log, "otp delivery failed", err)
			return nil, oops.Code(CodeDeliveryFailed).With("email", email).
				Errorf("failed to send OTP email, please try again later")
		}
		s.log.Warn("otp delivery failed, returning code in response", "email", email, "error", err)
		res.Message = "OTP generated (email delivery unavailable in development)"
		res.DevCode = rec.Code
	}
	return res, nil
}

// VerifyOTPAndRegister checks the registration code and creates the account
// in one call. The code must be valid before the email is re-checked, and the
// code is only retired once the user exists.
func (s *AuthService) VerifyOTPAndRegister(ctx context.Context, in RegistrationInput, code string) (*AuthResult, error) {
	in.Email = NormalizeEmail(in.Email)
	user, err := s.buildUser(in)
	if err != nil {
		return nil, err
	}
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, validationError("otp is required")
	}

	rec, err := s.otps.Check(ctx, in.Email, models.PurposeRegistration, code)
	if err != nil {
		return nil, err
	}

	exists, err := s.creds.Exists(ctx, in.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, duplicateEmail(in.Email)
	}

	if err := s.creds.CreateUser(ctx, user, in.Password); err != nil {
		return nil, err
	}
	if err := s.otps.MarkVerified(ctx, rec); err != nil {
		utils.LogError(s.log, "mark registration otp verified", err)
	}

	s.welcome(ctx, user)
	return s.signIn(user)
}

// Register creates an account without email verification.
func (s *AuthService) Register(ctx context.Context, in RegistrationInput) (*AuthResult, error) {
	in.Email = NormalizeEmail(in.Email)
	user, err := s.buildUser(in)
	if err != nil {
		return nil, err
	}
	if err := s.creds.CreateUser(ctx, user, in.Password); err != nil {
		return nil, err
	}
	s.welcome(ctx, user)
	return s.signIn(user)
}

// Login authenticates email and password. Every failure is the same
// INVALID_CREDENTIALS error.
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	email = NormalizeEmail(email)
	if email == "" || password == "" {
		return nil, validationError("email and password are required")
	}

	user, err := s.creds.FindByEmail(ctx, email)
	switch {
	case err == nil:
		if !user.IsActive || !s.creds.VerifyPassword(user, password) {
			return nil, invalidCredentials()
		}
		return s.signIn(user)
	case ErrorCode(err) != CodeNotFound:
		return nil, err
	}

	demo, ok := s.demoAccount(email, password)
	if !ok {
		return nil, invalidCredentials()
	}
	user, err = s.materializeDemo(ctx, demo, password)
	if err != nil {
		return nil, err
	}
	return s.signIn(user)
}

// materializeDemo stores the demo account as a real user. Losing a creation
// race falls back to the stored record.
func (s *AuthService) materializeDemo(ctx context.Context, demo DemoAccount, password string) (*models.User, error) {
	role := demo.Role
	if !models.ValidRole(role) {
		role = models.RoleStudent
	}
	user := &models.User{
		Name:            demo.DisplayName,
		Email:           demo.Email,
		Role:            role,
		TechnicalSkills: []string{},
		InterestedRoles: []string{},
		IsActive:        true,
		CreatedAt:       s.opts.Now().UTC(),
	}
	err := s.creds.CreateUser(ctx, user, password)
	if err == nil {
		s.log.Info("demo account provisioned", "email", user.Email, "user_id", user.ID.Hex())
		return user, nil
	}
	if ErrorCode(err) != CodeDuplicateEmail {
		return nil, err
	}

	existing, ferr := s.creds.FindByEmail(ctx, demo.Email)
	if ferr != nil {
		return nil, ferr
	}
	if !existing.IsActive || !s.creds.VerifyPassword(existing, password) {
		return nil, invalidCredentials()
	}
	return existing, nil
}

func (s *AuthService) demoAccount(email, password string) (DemoAccount, bool) {
	for _, d := range s.opts.DemoAccounts {
		if NormalizeEmail(d.Email) == email && d.Password == password {
			d.Email = email
			return d, true
		}
	}
	return DemoAccount{}, false
}

// ForgotPassword mails a reset code when the account exists and always
// answers with ForgotPasswordMessage.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) (string, error) {
	email = NormalizeEmail(email)
	if err := validateEmail(email); err != nil {
		return "", err
	}

	exists, err := s.creds.Exists(ctx, email)
	if err != nil {
		utils.LogError(s.log, "forgot password lookup", err)
		return ForgotPasswordMessage, nil
	}
	if !exists {
		return ForgotPasswordMessage, nil
	}

	rec, err := s.otps.Issue(ctx, email, models.PurposePasswordReset)
	if err != nil {
		utils.LogError(s.log, "issue password reset otp", err)
		return ForgotPasswordMessage, nil
	}
	if err := s.mailer.SendOTP(ctx, email, rec.Code, models.PurposePasswordReset, rec.ExpiresAt.Sub(rec.CreatedAt)); err != nil {
		s.log.Warn("password reset email failed", "email", email, "error", err)
	}
	return ForgotPasswordMessage, nil
}

// ResetPassword verifies a password_reset code and stores the new password.
func (s *AuthService) ResetPassword(ctx context.Context, email, code, newPassword string) error {
	email = NormalizeEmail(email)
	if err := validateEmail(email); err != nil {
		return err
	}
	code = strings.TrimSpace(code)
	if code == "" {
		return validationError("otp is required")
	}
	if len(newPassword) < MinPasswordLength {
		return validationError("password must be at least %d characters", MinPasswordLength)
	}

	rec, err := s.otps.Check(ctx, email, models.PurposePasswordReset, code)
	if err != nil {
		return err
	}
	user, err := s.creds.FindByEmail(ctx, email)
	if err != nil {
		return err
	}
	if err := s.otps.MarkVerified(ctx, rec); err != nil {
		return err
	}
	if _, err := s.creds.UpdateUser(ctx, user.ID, models.UserPatch{Password: &newPassword}); err != nil {
		return err
	}
	s.log.Info("password reset", "user_id", user.ID.Hex())
	return nil
}

// Me returns the stored profile of the authenticated user.
func (s *AuthService) Me(ctx context.Context, userID string) (*models.User, error) {
	id, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, oops.Code(CodeUnauthorized).Errorf("invalid token")
	}
	return s.creds.FindByID(ctx, id)
}

// UpdateProfile applies the fields present in upd. An update with no
// recognized field marks onboarding complete when
// ForceOnboardingOnEmptyUpdate is set.
func (s *AuthService) UpdateProfile(ctx context.Context, userID string, upd ProfileUpdate) (*models.User, error) {
	id, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, oops.Code(CodeUnauthorized).Errorf("invalid token")
	}

	var patch models.UserPatch
	if upd.Name != nil {
		name := strings.TrimSpace(*upd.Name)
		if name == "" {
			return nil, validationError("name cannot be empty")
		}
		patch.Name = &name
	}
	if upd.College != nil {
		college := strings.TrimSpace(*upd.College)
		patch.College = &college
	}
	if upd.BatchYear != nil {
		if err := s.validateBatchYear(*upd.BatchYear); err != nil {
			return nil, err
		}
		patch.BatchYear = upd.BatchYear
	}
	if upd.TechnicalSkills != nil {
		skills := CleanList(*upd.TechnicalSkills)
		patch.TechnicalSkills = &skills
	}
	if upd.InterestedRoles != nil {
		roles := CleanList(*upd.InterestedRoles)
		patch.InterestedRoles = &roles
	}
	if upd.OnboardingCompleted != nil {
		patch.OnboardingCompleted = upd.OnboardingCompleted
	}

	if patch.Empty() {
		if !s.opts.ForceOnboardingOnEmptyUpdate {
			return nil, validationError("no fields to update")
		}
		done := true
		patch.OnboardingCompleted = &done
	}
	return s.creds.UpdateUser(ctx, id, patch)
}

func (s *AuthService) signIn(user *models.User) (*AuthResult, error) {
	token, err := s.tokens.Issue(user.ID.Hex(), user.Email)
	if err != nil {
		return nil, internal("IssueToken", err)
	}
	return &AuthResult{User: user, Token: token}, nil
}

// welcome is best effort; a failed delivery never undoes the registration.
func (s *AuthService) welcome(ctx context.Context, user *models.User) {
	if err := s.mailer.SendWelcome(ctx, user.Email, user.Name); err != nil {
		s.log.Warn("welcome email failed", "email", user.Email, "error", err)
	}
}

// buildUser validates in and returns the user to store.
func (s *AuthService) buildUser(in RegistrationInput) (*models.User, error) {
	if err := validateEmail(in.Email); err != nil {
		return nil, err
	}
	if len(in.Password) < MinPasswordLength {
		return nil, validationError("password must be at least %d characters", MinPasswordLength)
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, validationError("name is required")
	}

	role := strings.ToLower(strings.TrimSpace(in.Role))
	if role == "" {
		role = models.RoleStudent
	}

	user := &models.User{
		Name:            name,
		Email:           in.Email,
		Role:            role,
		TechnicalSkills: CleanList(in.TechnicalSkills),
		InterestedRoles: CleanList(in.InterestedRoles),
		IsActive:        true,
		CreatedAt:       s.opts.Now().UTC(),
	}

	switch role {
	case models.RoleStudent:
		college := strings.TrimSpace(in.College)
		if college == "" {
			return nil, validationError("college is required for students")
		}
		if in.BatchYear == 0 {
			return nil, validationError("graduation year is required for students")
		}
		if err := s.validateBatchYear(in.BatchYear); err != nil {
			return nil, err
		}
		user.College = college
		user.BatchYear = in.BatchYear
	case models.RoleProfessional:
		company := strings.TrimSpace(in.CompanyName)
		if company == "" {
			return nil, validationError("company name is required for professionals")
		}
		if in.YearsExperience == nil || *in.YearsExperience < 0 {
			return nil, validationError("years of experience must be 0 or more for professionals")
		}
		years := *in.YearsExperience
		user.CompanyName = company
		user.YearsExperience = &years
	case models.RoleRecruiter:
		company := strings.TrimSpace(in.CompanyName)
		if company == "" {
			return nil, validationError("company name is required for recruiters")
		}
		user.CompanyName = company
	case models.RoleAdmin:
		return nil, validationError("admin accounts cannot be self-registered")
	default:
		return nil, validationError("invalid role %q", in.Role)
	}
	return user, nil
}

func (s *AuthService) validateBatchYear(year int) error {
	maxYear := s.opts.Now().Year() + 10
	if year < 1950 || year > maxYear {
		return validationError("graduation year must be between 1950 and %d", maxYear)
	}
	return nil
}

func validateEmail(email string) error {
	if email == "" {
		return validationError("email is required")
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return validationError("invalid email address")
	}
	return nil
}

func invalidCredentials() error {
	return oops.Code(CodeInvalidCredentials).Errorf("invalid email or password")
}

// CleanList trims entries, drops empty ones and removes case-insensitive
// duplicates, keeping the first spelling.
func CleanList(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for _, v := range in {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		key := strings.ToLower(v)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, v)
	}
	return out
}
