package user

import (
	"net/http"

	"github.com/Chasekung/Finance-Club/pkg/apperrors"
	"github.com/Chasekung/Finance-Club/pkg/logger"
	"github.com/jmoiron/sqlx"
	"github.com/labstack/echo/v4"
)

// Handler serves the admin user listing.
type Handler struct {
	db  *sqlx.DB
	log logger.Logger
}

func NewHandler(db *sqlx.DB) *Handler {
	return &Handler{db: db, log: logger.Get().WithComponent("user")}
}

// ListUsersHandler returns all users, admins first then by full name.
// Admin-only; passwords are never included.
func (h *Handler) ListUsersHandler(c echo.Context) error {
	var users []User
	err := h.db.SelectContext(c.Request().Context(), &users, `
		SELECT id, username, full_name, is_admin, created_at
		FROM users
		ORDER BY is_admin DESC, full_name ASC
	`)
	if err != nil {
		h.log.Error("Failed to list users", err)
		return apperrors.RespondWithError(c, apperrors.NewInternal(
			apperrors.ErrCodeDatabaseError, "Internal server error.", err))
	}

	resp := ListResponse{Users: make([]Response, 0, len(users))}
	for _, u := range users {
		resp.Users = append(resp.Users, Response{
			ID:        u.ID,
			Username:  u.Username,
			FullName:  u.FullName,
			IsAdmin:   u.IsAdmin,
			CreatedAt: u.CreatedAt,
		})
	}
	return c.JSON(http.StatusOK, resp)
}
