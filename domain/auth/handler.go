package auth

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/Chasekung/Finance-Club/domain/user"
	"github.com/Chasekung/Finance-Club/middleware"
	"github.com/Chasekung/Finance-Club/pkg/apperrors"
	"github.com/Chasekung/Finance-Club/pkg/logger"
	"github.com/Chasekung/Finance-Club/utils"
	"github.com/jmoiron/sqlx"
	"github.com/labstack/echo/v4"
	"github.com/spf13/viper"
)

// Handler serves login, registration and session checks.
type Handler struct {
	db  *sqlx.DB
	log logger.Logger
}

func NewHandler(db *sqlx.DB) *Handler {
	return &Handler{db: db, log: logger.Get().WithComponent("auth")}
}

type attemptsInfo struct {
	FailedAttempts int     `db:"failed_attempts"`
	BlockedUntil   *string `db:"blocked_until"`
}

// LoginHandler verifies credentials and issues a signed session cookie.
// Unknown username and wrong password answer identically so usernames
// cannot be enumerated.
func (h *Handler) LoginHandler(c echo.Context) error {
	log := h.log.WithRequestID(logger.GetRequestIDFromContext(c))

	req := new(LoginRequest)
	if err := c.Bind(req); err != nil {
		return apperrors.RespondWithError(c, apperrors.NewBadRequest(
			apperrors.ErrCodeInvalidInput, "Invalid request payload."))
	}
	if req.Username == "" || req.Password == "" {
		return apperrors.RespondWithError(c, apperrors.NewBadRequest(
			apperrors.ErrCodeMissingField, "Username and password are required"))
	}

	ctx := c.Request().Context()
	now := time.Now().UTC()

	var attempts attemptsInfo
	err := h.db.GetContext(ctx, &attempts, h.db.Rebind(`
		SELECT failed_attempts, blocked_until FROM login_attempts WHERE username = ?
	`), req.Username)
	if err != nil {
		if err != sql.ErrNoRows {
			log.Error("Failed to fetch login attempts", err, logger.Username(req.Username))
			return apperrors.RespondWithError(c, apperrors.NewInternal(
				apperrors.ErrCodeDatabaseError, "Internal server error.", err))
		}
		_, err = h.db.ExecContext(ctx, h.db.Rebind(`
			INSERT INTO login_attempts (username, failed_attempts, last_attempt_time)
			VALUES (?, 0, ?)
		`), req.Username, now.Format(time.RFC3339))
		if err != nil {
			log.Error("Failed to insert login attempts record", err, logger.Username(req.Username))
			return apperrors.RespondWithError(c, apperrors.NewInternal(
				apperrors.ErrCodeDatabaseError, "Internal server error.", err))
		}
	}

	// Check if the account is currently locked out
	if attempts.BlockedUntil != nil {
		blockedUntil, parseErr := time.Parse(time.RFC3339, *attempts.BlockedUntil)
		if parseErr == nil && blockedUntil.After(now) {
			remaining := blockedUntil.Sub(now)
			log.Warn("Login attempt while account locked", logger.Username(req.Username))
			return apperrors.RespondWithError(c, apperrors.NewTooManyRequests(
				apperrors.ErrCodeAccountLocked,
				"Account temporarily locked. Please try again in "+remaining.Round(time.Second).String()+"."))
		}
		if parseErr == nil && blockedUntil.Before(now) {
			// Block period passed; start counting fresh
			if _, err := h.db.ExecContext(ctx, h.db.Rebind(`
				UPDATE login_attempts SET failed_attempts = 0, blocked_until = NULL WHERE username = ?
			`), req.Username); err != nil {
				log.Error("Failed to reset login attempts after block period", err, logger.Username(req.Username))
				return apperrors.RespondWithError(c, apperrors.NewInternal(
					apperrors.ErrCodeDatabaseError, "Internal server error.", err))
			}
			attempts.FailedAttempts = 0
		}
	}

	u, err := user.FindByUsername(ctx, h.db, req.Username)
	if err != nil {
		if err == sql.ErrNoRows {
			return h.handleFailedAttempt(c, log, req.Username, attempts.FailedAttempts, now)
		}
		log.Error("Failed to fetch user", err, logger.Username(req.Username))
		return apperrors.RespondWithError(c, apperrors.NewInternal(
			apperrors.ErrCodeDatabaseError, "Internal server error.", err))
	}

	if !utils.CheckPasswordHash(req.Password, u.Password) {
		return h.handleFailedAttempt(c, log, req.Username, attempts.FailedAttempts, now)
	}

	if _, err := h.db.ExecContext(ctx, h.db.Rebind(`
		UPDATE login_attempts SET failed_attempts = 0, blocked_until = NULL WHERE username = ?
	`), req.Username); err != nil {
		log.Warn("Failed to reset login attempts on success", logger.Username(req.Username), logger.Err(err))
	}

	token, err := utils.GenerateSessionToken(u.ID, u.IsAdmin)
	if err != nil {
		log.Error("Failed to generate session token", err, logger.UserID(u.ID))
		return apperrors.RespondWithError(c, apperrors.NewInternal(
			apperrors.ErrCodeUnexpectedError, "Internal server error.", err))
	}

	c.SetCookie(sessionCookie(token, int(utils.SessionDuration.Seconds())))

	log.Info("User logged in", logger.UserID(u.ID), logger.Username(u.Username))

	return c.JSON(http.StatusOK, LoginResponse{
		Message: "Login successful",
		User: SessionUser{
			ID:       u.ID,
			Username: u.Username,
			FullName: u.FullName,
			IsAdmin:  u.IsAdmin,
		},
	})
}

func (h *Handler) handleFailedAttempt(c echo.Context, log logger.Logger, username string, failedAttempts int, now time.Time) error {
	ctx := c.Request().Context()
	newCount := failedAttempts + 1

	var blockedUntil *string
	if newCount >= MaxFailedAttempts {
		s := now.Add(BlockDuration).Format(time.RFC3339)
		blockedUntil = &s
		log.Warn("Account locked after repeated failures", logger.Username(username))
	}

	if _, err := h.db.ExecContext(ctx, h.db.Rebind(`
		UPDATE login_attempts
		SET failed_attempts = ?, last_attempt_time = ?, blocked_until = ?
		WHERE username = ?
	`), newCount, now.Format(time.RFC3339), blockedUntil, username); err != nil {
		log.Error("Failed to record failed login attempt", err, logger.Username(username))
	}

	// Same answer whether the username or the password was wrong
	return apperrors.RespondWithError(c, apperrors.NewUnauthorized(
		apperrors.ErrCodeInvalidCredentials, "Invalid username or password"))
}

// RegisterHandler creates a new member account.
func (h *Handler) RegisterHandler(c echo.Context) error {
	log := h.log.WithRequestID(logger.GetRequestIDFromContext(c))

	req := new(RegisterRequest)
	if err := c.Bind(req); err != nil {
		return apperrors.RespondWithError(c, apperrors.NewBadRequest(
			apperrors.ErrCodeInvalidInput, "Invalid request payload."))
	}
	if req.Username == "" || req.Password == "" || req.FullName == "" {
		return apperrors.RespondWithError(c, apperrors.NewBadRequest(
			apperrors.ErrCodeMissingField, "Username, password, and full name are required"))
	}

	ctx := c.Request().Context()

	if _, err := user.FindByUsername(ctx, h.db, req.Username); err == nil {
		return apperrors.RespondWithError(c, apperrors.NewConflict(
			apperrors.ErrCodeResourceExists, "Username already taken"))
	} else if err != sql.ErrNoRows {
		log.Error("Failed to check for existing user", err, logger.Username(req.Username))
		return apperrors.RespondWithError(c, apperrors.NewInternal(
			apperrors.ErrCodeDatabaseError, "Internal server error.", err))
	}

	id, err := user.Create(ctx, h.db, req.Username, req.Password, req.FullName, false)
	if err != nil {
		log.Error("Failed to create user", err, logger.Username(req.Username))
		return apperrors.RespondWithError(c, apperrors.NewInternal(
			apperrors.ErrCodeDatabaseError, "Internal server error.", err))
	}

	log.Info("User registered", logger.UserID(id), logger.Username(req.Username))
	return c.JSON(http.StatusCreated, map[string]string{"message": "User created successfully"})
}

// LogoutHandler clears the session cookie.
func (h *Handler) LogoutHandler(c echo.Context) error {
	c.SetCookie(sessionCookie("", -1))
	return c.JSON(http.StatusOK, map[string]string{"message": "Logout successful"})
}

// CheckHandler reports whether the request carries a valid session.
func (h *Handler) CheckHandler(c echo.Context) error {
	cookie, err := c.Cookie(middleware.SessionCookieName)
	if err != nil || cookie.Value == "" {
		return apperrors.RespondWithError(c, apperrors.NewUnauthorized(
			apperrors.ErrCodeTokenMissing, "Not authenticated"))
	}

	claims, err := utils.ParseSessionToken(cookie.Value)
	if err != nil {
		return apperrors.RespondWithError(c, apperrors.NewUnauthorized(
			apperrors.ErrCodeTokenInvalid, "Invalid or expired session"))
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"authenticated": true,
		"userId":        claims.UserID,
		"isAdmin":       claims.IsAdmin,
	})
}

func sessionCookie(token string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   viper.GetString("ENVIRONMENT") == "production",
		SameSite: http.SameSiteStrictMode,
	}
}
