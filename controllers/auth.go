package controllers

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Rahel786/QuickHire-sub000/middleware"
	"github.com/Rahel786/QuickHire-sub000/models"
	"github.com/Rahel786/QuickHire-sub000/services"
)

// SendOTPInput request body for issuing a code
type SendOTPInput struct {
	Email string `json:"email" binding:"required"`
	Type  string `json:"type"`
}

// RegisterInput request body for registration. GraduationYear and BatchYear
// are aliases; numeric strings are accepted.
type RegisterInput struct {
	Email           string   `json:"email" binding:"required"`
	Password        string   `json:"password" binding:"required"`
	Name            string   `json:"name" binding:"required"`
	Role            string   `json:"role"`
	College         string   `json:"college"`
	GraduationYear  *FlexInt `json:"graduationYear"`
	BatchYear       *FlexInt `json:"batchYear"`
	YearsExperience *FlexInt `json:"yearsExperience"`
	CompanyName     string   `json:"companyName"`
	TechnicalSkills []string `json:"technicalSkills"`
	InterestedRoles []string `json:"interestedRoles"`
}

func (in RegisterInput) toService() services.RegistrationInput {
	year := in.GraduationYear
	if year == nil {
		year = in.BatchYear
	}
	out := services.RegistrationInput{
		Email:           in.Email,
		Password:        in.Password,
		Name:            in.Name,
		Role:            in.Role,
		College:         in.College,
		YearsExperience: in.YearsExperience.IntPtr(),
		CompanyName:     in.CompanyName,
		TechnicalSkills: in.TechnicalSkills,
		InterestedRoles: in.InterestedRoles,
	}
	if year != nil {
		out.BatchYear = int(*year)
	}
	return out
}

// VerifyOTPRegisterInput is RegisterInput plus the emailed code
type VerifyOTPRegisterInput struct {
	RegisterInput
	OTP string `json:"otp" binding:"required"`
}

// LoginInput request body for login
type LoginInput struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// ForgotPasswordInput
type ForgotPasswordInput struct {
	Email string `json:"email" binding:"required"`
}

// ResetPasswordInput
type ResetPasswordInput struct {
	Email       string `json:"email" binding:"required"`
	OTP         string `json:"otp" binding:"required"`
	NewPassword string `json:"newPassword" binding:"required"`
}

// UpdateProfileInput is a sparse profile update; absent fields stay as they are
type UpdateProfileInput struct {
	Name                *string   `json:"name"`
	College             *string   `json:"college"`
	GraduationYear      *FlexInt  `json:"graduationYear"`
	BatchYear           *FlexInt  `json:"batchYear"`
	TechnicalSkills     *[]string `json:"technicalSkills"`
	InterestedRoles     *[]string `json:"interestedRoles"`
	OnboardingCompleted *bool     `json:"onboardingCompleted"`
}

// AuthHandler serves /api/auth.
type AuthHandler struct {
	auth *services.AuthService
	log  *slog.Logger
}

func NewAuthHandler(auth *services.AuthService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{auth: auth, log: logger}
}

// SendOTP issues a registration or password-reset code
func (h *AuthHandler) SendOTP(c *gin.Context) {
	var input SendOTPInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, err)
		return
	}
	purpose := models.OTPPurpose(input.Type)
	if purpose == "" {
		purpose = models.PurposeRegistration
	}

	res, err := h.auth.SendOTP(c.Request.Context(), input.Email, purpose)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// VerifyOTPRegister checks the code and creates the account
func (h *AuthHandler) VerifyOTPRegister(c *gin.Context) {
	var input VerifyOTPRegisterInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, err)
		return
	}

	res, err := h.auth.VerifyOTPAndRegister(c.Request.Context(), input.RegisterInput.toService(), input.OTP)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "registration successful", "user": res.User, "token": res.Token})
}

// Register creates an account without OTP verification
func (h *AuthHandler) Register(c *gin.Context) {
	var input RegisterInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, err)
		return
	}

	res, err := h.auth.Register(c.Request.Context(), input.toService())
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "user registered", "user": res.User, "token": res.Token})
}

// Login authenticates and returns a session token
func (h *AuthHandler) Login(c *gin.Context) {
	var input LoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, err)
		return
	}

	res, err := h.auth.Login(c.Request.Context(), input.Email, input.Password)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "login successful", "user": res.User, "token": res.Token})
}

// ForgotPassword always answers with the same message
func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var input ForgotPasswordInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, err)
		return
	}

	msg, err := h.auth.ForgotPassword(c.Request.Context(), input.Email)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": msg})
}

// ResetPassword verifies the code and sets the new password
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var input ResetPasswordInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, err)
		return
	}

	if err := h.auth.ResetPassword(c.Request.Context(), input.Email, input.OTP, input.NewPassword); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "password reset successful"})
}

// Me returns the current profile
func (h *AuthHandler) Me(c *gin.Context) {
	user, err := h.auth.Me(c.Request.Context(), c.GetString(middleware.ContextUserID))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

// UpdateMe applies a sparse profile update. An empty body is allowed.
func (h *AuthHandler) UpdateMe(c *gin.Context) {
	var input UpdateProfileInput
	if err := c.ShouldBindJSON(&input); err != nil && !errors.Is(err, io.EOF) {
		badRequest(c, err)
		return
	}

	year := input.GraduationYear
	if year == nil {
		year = input.BatchYear
	}
	upd := services.ProfileUpdate{
		Name:                input.Name,
		College:             input.College,
		BatchYear:           year.IntPtr(),
		TechnicalSkills:     input.TechnicalSkills,
		InterestedRoles:     input.InterestedRoles,
		OnboardingCompleted: input.OnboardingCompleted,
	}

	user, err := h.auth.UpdateProfile(c.Request.Context(), c.GetString(middleware.ContextUserID), upd)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "profile updated", "user": user})
}
