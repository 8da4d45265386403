package handlers

import (
	"github.com/gofiber/fiber/v2"
)

type HealthHandler struct {
	platforms []string
}

func NewHealthHandler(platforms []string) *HealthHandler {
	return &HealthHandler{platforms: platforms}
}

func (h *HealthHandler) Root(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"message": "University social media generator API",
	})
}

func (h *HealthHandler) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":    "healthy",
		"service":   "backend",
		"platforms": h.platforms,
	})
}
