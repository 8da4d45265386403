package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
)

// GetUserID returns the authenticated owner, or nil for anonymous requests.
func GetUserID(c *fiber.Ctx) *int64 {
	raw, ok := c.Locals("user_id").(string)
	if !ok || raw == "" {
		return nil
	}
	userID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil
	}
	return &userID
}
