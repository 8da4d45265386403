package handlers

import (
	"context"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/maheshrc27/postgen/internal/models"
	"github.com/maheshrc27/postgen/internal/service"
	"github.com/maheshrc27/postgen/internal/transfer"
)

// MediaAttacher derives the shared image and video for a generation.
type MediaAttacher interface {
	Attach(ctx context.Context, gen *models.Generation, requested []string) *models.MasterAsset
}

type ContentHandler struct {
	cs service.ContentService
	ma MediaAttacher
}

func NewContentHandler(cs service.ContentService, ma MediaAttacher) *ContentHandler {
	return &ContentHandler{cs: cs, ma: ma}
}

func (h *ContentHandler) Generate(c *fiber.Ctx) error {
	var req transfer.GenerateRequest
	if err := c.BodyParser(&req); err != nil {
		slog.Error(err.Error())
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	platforms, err := service.NormalizePlatforms(req.Platforms)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	gen := h.cs.Generate(c.UserContext(), req.Title, req.Body, platforms)
	if asset := h.ma.Attach(c.UserContext(), gen, platforms); asset != nil {
		slog.Info("master asset derived", "public_url", asset.PublicURL, "video", asset.VideoPath != "")
	}

	return c.Status(fiber.StatusOK).JSON(gen)
}
