package handlers

import (
	"context"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/BruksfildServices01/makeup-scheduler/internal/auth"
	"github.com/BruksfildServices01/makeup-scheduler/internal/dto"
	"github.com/BruksfildServices01/makeup-scheduler/internal/httperr"
	"github.com/BruksfildServices01/makeup-scheduler/internal/httpresp"
	"github.com/BruksfildServices01/makeup-scheduler/internal/models"
	"github.com/BruksfildServices01/makeup-scheduler/internal/notify"
	"github.com/BruksfildServices01/makeup-scheduler/internal/validators"
)

const codeTTL = 15 * time.Minute

type UserStore interface {
	GetUser(ctx context.Context, id uint) (*models.User, error)
	FindUserByEmail(ctx context.Context, email string) (*models.User, error)
	CreateUser(ctx context.Context, u *models.User) error
	SaveUser(ctx context.Context, u *models.User) error
}

type AuthHandler struct {
	users  UserStore
	issuer *auth.Issuer
	mailer notify.Mailer

	checkDomain func(email string) bool
	now         func() time.Time
}

func NewAuthHandler(users UserStore, issuer *auth.Issuer, mailer notify.Mailer) *AuthHandler {
	return &AuthHandler{
		users:       users,
		issuer:      issuer,
		mailer:      mailer,
		checkDomain: validators.IsEmailDomainValid,
		now:         time.Now,
	}
}

// --------- Requests ---------

type SignupRequest struct {
	Name     string `json:"name" binding:"required,max=50"`
	Surname  string `json:"surname" binding:"required,max=50"`
	Email    string `json:"email" binding:"required,email,max=100"`
	PhoneNum string `json:"phoneNum" binding:"required"`
	Password string `json:"password" binding:"required,min=8,max=100"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type VerifyRequest struct {
	Email            string `json:"email" binding:"required,email"`
	VerificationCode string `json:"verificationCode" binding:"required"`
}

type PasswordResetRequest struct {
	Email       string `json:"email" binding:"required,email"`
	Code        string `json:"code" binding:"required"`
	NewPassword string `json:"newPassword" binding:"required,min=8,max=100"`
}

type LoginResponse struct {
	Token     string           `json:"token"`
	ExpiresIn int64            `json:"expiresIn"`
	User      dto.UserResponse `json:"user"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// --------- Handlers ---------

func (h *AuthHandler) Signup(c *gin.Context) {
	var req SignupRequest
	if !bindJSON(c, &req) {
		return
	}

	email := normalizeEmail(req.Email)
	if !validators.IsPhoneValid(req.PhoneNum) {
		httperr.BadRequest(c, "invalid_phone", "Must be a valid phone number.")
		return
	}
	if !h.checkDomain(email) {
		httperr.BadRequest(c, "invalid_email_domain", "The email domain does not look valid.")
		return
	}

	hashed, err := auth.HashPassword(req.Password)
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	code, err := auth.GenerateCode()
	if err != nil {
		httperr.Respond(c, err)
		return
	}
	expires := h.now().Add(codeTTL)

	user := models.User{
		Name:                      strings.TrimSpace(req.Name),
		Surname:                   strings.TrimSpace(req.Surname),
		Email:                     email,
		PasswordHash:              hashed,
		Phone:                     strings.TrimSpace(req.PhoneNum),
		Role:                      models.RoleUser,
		VerificationCode:          code,
		VerificationCodeExpiresAt: &expires,
	}

	if err := h.users.CreateUser(c.Request.Context(), &user); err != nil {
		httperr.Respond(c, err)
		return
	}

	h.sendCode(c.Request.Context(), &user, "verification", "Account Verification", code)

	httpresp.Created(c, dto.NewUserResponse(&user))
}

func (h *AuthHandler) Verify(c *gin.Context) {
	var req VerifyRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.users.FindUserByEmail(c.Request.Context(), req.Email)
	if err != nil {
		httperr.Respond(c, err)
		return
	}
	if user.Enabled {
		httperr.BadRequest(c, "account_already_verified", "Account is already verified.")
		return
	}
	if err := h.checkCode(user.VerificationCode, user.VerificationCodeExpiresAt, req.VerificationCode); err != nil {
		httperr.Respond(c, err)
		return
	}

	user.Enabled = true
	user.VerificationCode = ""
	user.VerificationCodeExpiresAt = nil
	if err := h.users.SaveUser(c.Request.Context(), user); err != nil {
		httperr.Respond(c, err)
		return
	}

	httpresp.OK(c, messageResponse{Message: "Account verified successfully"})
}

func (h *AuthHandler) Resend(c *gin.Context) {
	email := c.Query("email")
	if email == "" {
		httperr.BadRequest(c, "missing_email", "Email is required.")
		return
	}

	user, err := h.users.FindUserByEmail(c.Request.Context(), email)
	if err != nil {
		httperr.Respond(c, err)
		return
	}
	if user.Enabled {
		httperr.BadRequest(c, "account_already_verified", "Account is already verified.")
		return
	}

	code, err := auth.GenerateCode()
	if err != nil {
		httperr.Respond(c, err)
		return
	}
	expires := h.now().Add(codeTTL)
	user.VerificationCode = code
	user.VerificationCodeExpiresAt = &expires

	if err := h.users.SaveUser(c.Request.Context(), user); err != nil {
		httperr.Respond(c, err)
		return
	}
	h.sendCode(c.Request.Context(), user, "verification", "Account Verification", code)

	httpresp.OK(c, messageResponse{Message: "Verification code sent"})
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.users.FindUserByEmail(c.Request.Context(), req.Email)
	if err != nil {
		if httperr.IsKind(err, httperr.KindNotFound) {
			httperr.Unauthorized(c, "invalid_credentials", "Invalid email or password.")
			return
		}
		httperr.Respond(c, err)
		return
	}

	if !auth.CheckPassword(user.PasswordHash, req.Password) {
		httperr.Unauthorized(c, "invalid_credentials", "Invalid email or password.")
		return
	}
	if !user.Enabled {
		httperr.Respond(c, httperr.Forbidden("account_not_verified", "Account not verified. Please verify your account."))
		return
	}

	token, err := h.issuer.MakeToken(user)
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	httpresp.OK(c, LoginResponse{
		Token:     token,
		ExpiresIn: int64(h.issuer.TTL().Seconds()),
		User:      dto.NewUserResponse(user),
	})
}

func (h *AuthHandler) RequestPasswordReset(c *gin.Context) {
	email := c.Query("email")
	if email == "" {
		httperr.BadRequest(c, "missing_email", "Email is required.")
		return
	}

	user, err := h.users.FindUserByEmail(c.Request.Context(), email)
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	code, err := auth.GenerateCode()
	if err != nil {
		httperr.Respond(c, err)
		return
	}
	expires := h.now().Add(codeTTL)
	user.PasswordResetCode = code
	user.PasswordResetExpiresAt = &expires

	if err := h.users.SaveUser(c.Request.Context(), user); err != nil {
		httperr.Respond(c, err)
		return
	}
	h.sendCode(c.Request.Context(), user, "password_reset", "Password Reset", code)

	httpresp.OK(c, messageResponse{Message: "Password reset email has been sent"})
}

func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req PasswordResetRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.users.FindUserByEmail(c.Request.Context(), req.Email)
	if err != nil {
		httperr.Respond(c, err)
		return
	}
	if err := h.checkCode(user.PasswordResetCode, user.PasswordResetExpiresAt, req.Code); err != nil {
		httperr.Respond(c, err)
		return
	}

	hashed, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		httperr.Respond(c, err)
		return
	}
	user.PasswordHash = hashed
	user.PasswordResetCode = ""
	user.PasswordResetExpiresAt = nil

	if err := h.users.SaveUser(c.Request.Context(), user); err != nil {
		httperr.Respond(c, err)
		return
	}

	httpresp.OK(c, messageResponse{Message: "Password has been set successfully"})
}

// --------- Helpers ---------

func (h *AuthHandler) checkCode(stored string, expiresAt *time.Time, given string) error {
	if stored == "" || expiresAt == nil {
		return httperr.Validation("invalid_code", "No code was requested.")
	}
	if h.now().After(*expiresAt) {
		return httperr.Validation("code_expired", "Code has expired.")
	}
	if strings.TrimSpace(given) != stored {
		return httperr.Validation("invalid_code", "Invalid code.")
	}
	return nil
}

// sendCode emails a one-time code. Failures are logged; the user can ask again.
func (h *AuthHandler) sendCode(ctx context.Context, user *models.User, tmpl, subject, code string) {
	body, err := notify.Render(tmpl, notify.MessageData{Name: user.FullName(), Code: code})
	if err != nil {
		log.Error().Err(err).Str("template", tmpl).Msg("render email failed")
		return
	}
	if err := h.mailer.Send(ctx, user.Email, subject, body); err != nil {
		log.Warn().Err(err).Uint("user_id", user.ID).Str("template", tmpl).Msg("send email failed")
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
