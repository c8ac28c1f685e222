package middleware

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"
)

// RateLimiterConfig holds the configuration for rate limiting
type RateLimiterConfig struct {
	MaxRequests   int           // Maximum number of requests allowed
	Window        time.Duration // Time window for rate limiting
	BlockDuration time.Duration // Duration to block the IP after exceeding limits
	DB            *sqlx.DB      // Database connection
}

// RateLimiterMiddleware returns a middleware that limits the number of requests
// per IP using the ip_rate_limits table. Timestamps are stored as RFC3339 text
// and compared in Go so the same queries run on postgres and sqlite.
func RateLimiterMiddleware(config RateLimiterConfig) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ip := c.RealIP()
			now := time.Now().UTC()

			tx, err := config.DB.Beginx()
			if err != nil {
				log.Error("Failed to begin transaction:", err)
				return c.JSON(http.StatusInternalServerError, map[string]string{
					"error": "Internal server error",
				})
			}
			defer tx.Rollback()

			rebind := func(q string) string { return config.DB.Rebind(q) }

			var row struct {
				RequestCount     int     `db:"request_count"`
				FirstRequestTime string  `db:"first_request_time"`
				BlockedUntil     *string `db:"blocked_until"`
			}
			err = tx.Get(&row, rebind(`
				SELECT request_count, first_request_time, blocked_until
				FROM ip_rate_limits WHERE ip_address = ?
			`), ip)
			if err != nil && err != sql.ErrNoRows {
				log.Error("Failed to fetch rate limit data:", err)
				return c.JSON(http.StatusInternalServerError, map[string]string{
					"error": "Internal server error",
				})
			}

			if err == sql.ErrNoRows {
				// First request from this IP
				_, err = tx.Exec(rebind(`
					INSERT INTO ip_rate_limits (ip_address, request_count, first_request_time, last_request_time)
					VALUES (?, 1, ?, ?)
				`), ip, now.Format(time.RFC3339), now.Format(time.RFC3339))
				if err != nil {
					log.Error("Failed to insert rate limit data:", err)
					return c.JSON(http.StatusInternalServerError, map[string]string{
						"error": "Internal server error",
					})
				}
			} else {
				if row.BlockedUntil != nil {
					blockedUntil, err := time.Parse(time.RFC3339, *row.BlockedUntil)
					if err == nil && blockedUntil.After(now) {
						tx.Commit()
						return c.JSON(http.StatusTooManyRequests, map[string]string{
							"error": "Too many requests from this IP, please try again later.",
						})
					}
				}

				firstRequestTime, err := time.Parse(time.RFC3339, row.FirstRequestTime)
				if err != nil {
					firstRequestTime = now
				}

				if now.Sub(firstRequestTime) > config.Window {
					// Reset the window
					_, err = tx.Exec(rebind(`
						UPDATE ip_rate_limits
						SET request_count = 1, first_request_time = ?, last_request_time = ?, blocked_until = NULL
						WHERE ip_address = ?
					`), now.Format(time.RFC3339), now.Format(time.RFC3339), ip)
					if err != nil {
						log.Error("Failed to reset rate limit data:", err)
						return c.JSON(http.StatusInternalServerError, map[string]string{
							"error": "Internal server error",
						})
					}
				} else if row.RequestCount >= config.MaxRequests {
					// Block the IP
					blockedUntilTime := now.Add(config.BlockDuration)
					_, err = tx.Exec(rebind(`
						UPDATE ip_rate_limits SET blocked_until = ? WHERE ip_address = ?
					`), blockedUntilTime.Format(time.RFC3339), ip)
					if err != nil {
						log.Error("Failed to block IP:", err)
						return c.JSON(http.StatusInternalServerError, map[string]string{
							"error": "Internal server error",
						})
					}
					tx.Commit()
					return c.JSON(http.StatusTooManyRequests, map[string]string{
						"error": "Too many requests from this IP, please try again later.",
					})
				} else {
					_, err = tx.Exec(rebind(`
						UPDATE ip_rate_limits
						SET request_count = request_count + 1, last_request_time = ?
						WHERE ip_address = ?
					`), now.Format(time.RFC3339), ip)
					if err != nil {
						log.Error("Failed to update rate limit data:", err)
						return c.JSON(http.StatusInternalServerError, map[string]string{
							"error": "Internal server error",
						})
					}
				}
			}

			if err := tx.Commit(); err != nil {
				log.Error("Failed to commit transaction:", err)
				return c.JSON(http.StatusInternalServerError, map[string]string{
					"error": "Internal server error",
				})
			}

			return next(c)
		}
	}
}
