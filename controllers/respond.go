package controllers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Rahel786/QuickHire-sub000/middleware"
	"github.com/Rahel786/QuickHire-sub000/models"
	"github.com/Rahel786/QuickHire-sub000/services"
	"github.com/Rahel786/QuickHire-sub000/utils"
)

// statusFor maps a service error code to an HTTP status.
func statusFor(code string) int {
	switch code {
	case services.CodeValidation, services.CodeDuplicateEmail,
		services.CodeOTPExpired, services.CodeOTPMismatch, services.CodeOTPAttemptsExceeded:
		return http.StatusBadRequest
	case services.CodeUnauthorized, services.CodeInvalidCredentials:
		return http.StatusUnauthorized
	case services.CodeForbidden:
		return http.StatusForbidden
	case services.CodeNotFound, services.CodeOTPNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes {"error": msg}. Errors without a client-facing code
// are logged and reported as a bare internal error.
func respondError(c *gin.Context, logger *slog.Logger, err error) {
	code := services.ErrorCode(err)
	status := statusFor(code)
	if status == http.StatusInternalServerError {
		utils.LogError(logger.With("request_id", c.GetString(middleware.ContextRequestID)), "request failed", err)
		msg := "internal server error"
		if code == services.CodeDeliveryFailed {
			msg = err.Error()
		}
		c.JSON(status, gin.H{"error": msg})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": bindingMessage(err)})
}

// bindingMessage keeps JSON decoder errors readable without echoing input.
func bindingMessage(err error) string {
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	switch {
	case errors.As(err, &syntaxErr):
		return "malformed JSON body"
	case errors.As(err, &typeErr):
		return "invalid value for field " + typeErr.Field
	default:
		return err.Error()
	}
}

// viewerFrom builds the caller identity set by the auth middleware.
func viewerFrom(c *gin.Context) services.Viewer {
	return services.ViewerFrom(c.GetString(middleware.ContextUserID), c.GetString(middleware.ContextRole))
}

func pageFrom(c *gin.Context) models.Page {
	number, _ := strconv.Atoi(c.Query("page"))
	limit, _ := strconv.Atoi(c.Query("limit"))
	return models.Page{Number: number, Limit: limit}.Normalize()
}

// FlexInt accepts a JSON number or a numeric string.
type FlexInt int

func (f *FlexInt) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		if s == "" {
			return nil
		}
		n, err := strconv.Atoi(s)
		if err != nil {
			return fmt.Errorf("expected a number, got %q", s)
		}
		*f = FlexInt(n)
		return nil
	}
	var n int
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*f = FlexInt(n)
	return nil
}

// IntPtr converts an optional FlexInt.
func (f *FlexInt) IntPtr() *int {
	if f == nil {
		return nil
	}
	n := int(*f)
	return &n
}
