package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/campusworks/review-portal/internal/middleware"
	"github.com/campusworks/review-portal/internal/model"
	"github.com/campusworks/review-portal/internal/repository"
	"github.com/campusworks/review-portal/internal/response"
	"github.com/campusworks/review-portal/internal/service"
	"github.com/campusworks/review-portal/internal/validator"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// AuthHandler handles authentication and password reset endpoints.
type AuthHandler struct {
	authService *service.AuthService
	otpService  *service.OTPService
	mailer      service.Mailer
	users       *repository.UserRepository
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(
	authService *service.AuthService,
	otpService *service.OTPService,
	mailer service.Mailer,
	users *repository.UserRepository,
) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		otpService:  otpService,
		mailer:      mailer,
		users:       users,
	}
}

// Login godoc
// POST /api/auth/login
// Validates email + password and returns a JWT.
func (h *AuthHandler) Login(c *gin.Context) {
	var req model.LoginRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	user, err := h.users.GetByEmail(c.Request.Context(), req.Email)
	if err != nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrInvalidCredentials)
		return
	}
	if err := h.authService.CheckPassword(user.PasswordHash, req.Password); err != nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrInvalidCredentials)
		return
	}

	token, err := h.authService.GenerateToken(c.Request.Context(), user)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	c.JSON(http.StatusOK, model.LoginResponse{Token: token, User: *user})
}

// Logout godoc
// POST /api/auth/logout
// Removes the active session so the current token stops working.
func (h *AuthHandler) Logout(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}
	if err := h.authService.Logout(c.Request.Context(), claims.UserID); err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}

// Me godoc
// GET /api/auth/me
// Returns the authenticated user's profile.
func (h *AuthHandler) Me(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}
	user, err := h.users.GetByID(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		return
	}
	c.JSON(http.StatusOK, user)
}

// ForgotPassword godoc
// POST /api/auth/forgot-password
// Issues an OTP and mails it. The response is identical whether or not the
// email exists, so the endpoint cannot be used to enumerate accounts.
func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var req model.ForgotPasswordRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	if _, err := h.users.GetByEmail(c.Request.Context(), req.Email); err == nil {
		otp, err := h.otpService.Issue(c.Request.Context(), req.Email)
		if err != nil {
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
			return
		}
		if err := h.mailer.SendOTP(req.Email, otp); err != nil {
			log.Error().Err(err).Str("email", req.Email).Msg("OTP mail delivery failed")
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{"message": "If the email is registered, a verification code has been sent."})
}

// VerifyOTP godoc
// POST /api/auth/verify-otp
// Exchanges a valid OTP for a one-shot reset ticket.
func (h *AuthHandler) VerifyOTP(c *gin.Context) {
	var req model.VerifyOTPRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	ticket, err := h.otpService.Verify(c.Request.Context(), req.Email, req.OTP)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrOTPMaxAttempts):
			response.Fail(c, http.StatusTooManyRequests, response.ErrOTPMaxAttempts)
		case errors.Is(err, service.ErrOTPInvalid):
			response.Fail(c, http.StatusBadRequest, response.ErrOTPInvalid)
		default:
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"ticket": ticket})
}

// ResetPassword godoc
// POST /api/auth/reset-password
// Sets a new password using a reset ticket from VerifyOTP.
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req model.ResetPasswordRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	if err := h.otpService.Redeem(c.Request.Context(), req.Email, req.Ticket); err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrOTPExpired)
		return
	}

	user, err := h.users.GetByEmail(c.Request.Context(), req.Email)
	if err != nil {
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		return
	}
	hash, err := h.authService.HashPassword(req.NewPassword)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	if err := h.users.UpdatePassword(c.Request.Context(), user.ID, hash); err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	// Kill any live session so the old credentials cannot linger.
	_ = h.authService.Logout(c.Request.Context(), user.ID)

	c.JSON(http.StatusOK, gin.H{"message": "Password updated. Please log in."})
}

// ListUsers godoc
// GET /api/auth/users
// Lists all accounts (admin only).
func (h *AuthHandler) ListUsers(c *gin.Context) {
	users, err := h.users.List(c.Request.Context())
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": users})
}

// DeleteUser godoc
// DELETE /api/auth/users/:id
// Removes an account and kills its live session (admin only).
func (h *AuthHandler) DeleteUser(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}
	if claims := middleware.GetClaims(c); claims != nil && claims.UserID == id {
		// Admins cannot delete their own account mid-session.
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidPayload)
		return
	}

	if err := h.users.Delete(c.Request.Context(), id); err != nil {
		if repository.IsNotFound(err) {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	_ = h.authService.Logout(c.Request.Context(), id)
	c.JSON(http.StatusOK, gin.H{"message": "User deleted"})
}

// AdminResetPassword godoc
// POST /api/auth/admin-reset-password
// Sets a new password for any account without an OTP flow (admin only).
func (h *AuthHandler) AdminResetPassword(c *gin.Context) {
	var req model.AdminResetPasswordRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	user, err := h.users.GetByEmail(c.Request.Context(), req.Email)
	if err != nil {
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		return
	}
	hash, err := h.authService.HashPassword(req.NewPassword)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	if err := h.users.UpdatePassword(c.Request.Context(), user.ID, hash); err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	_ = h.authService.Logout(c.Request.Context(), user.ID)

	c.JSON(http.StatusOK, gin.H{"message": "Password updated"})
}

// ChangePassword godoc
// POST /api/auth/change-password
// Updates the authenticated user's password after re-checking the old one.
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	var req model.ChangePasswordRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	user, err := h.users.GetByID(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		return
	}
	if err := h.authService.CheckPassword(user.PasswordHash, req.CurrentPassword); err != nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrInvalidCredentials)
		return
	}

	hash, err := h.authService.HashPassword(req.NewPassword)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	if err := h.users.UpdatePassword(c.Request.Context(), user.ID, hash); err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Password updated"})
}
