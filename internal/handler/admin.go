package handler

import (
	"crypto/subtle"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

// AdminPasswordHeader carries the shared operator passphrase on
// administrative requests.
const AdminPasswordHeader = "X-Admin-Password"

// AdminGate returns middleware that rejects requests whose passphrase does
// not match the configured operator secret. The comparison is constant
// time, the response is a uniform 401, and the attempted action is logged
// without echoing the submitted value.
func AdminGate(password string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		given := c.Get(AdminPasswordHeader)
		if subtle.ConstantTimeCompare([]byte(given), []byte(password)) != 1 {
			log.Warn().
				Str("method", c.Method()).
				Str("path", c.Path()).
				Str("request_id", c.GetRespHeader("X-Request-ID")).
				Msg("unauthorized admin request")
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized"})
		}
		return c.Next()
	}
}
