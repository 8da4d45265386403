package handlers

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/maheshrc27/postgen/internal/models"
	"github.com/maheshrc27/postgen/internal/service"
	"github.com/maheshrc27/postgen/internal/transfer"
)

type PublicationHandler struct {
	s service.PublicationService
}

func NewPublicationHandler(s service.PublicationService) *PublicationHandler {
	return &PublicationHandler{s: s}
}

// Publish always answers 200; the outcome is carried in the body.
func (h *PublicationHandler) Publish(c *fiber.Ctx) error {
	var req transfer.PublishRequest
	if err := c.BodyParser(&req); err != nil {
		slog.Error(err.Error())
		return c.Status(fiber.StatusOK).JSON(transfer.PublishResponse{
			Success:   false,
			Message:   "Invalid request body",
			Status:    models.PublicationStatusFailed,
			ErrorKind: models.ErrValidation,
		})
	}

	resp := h.s.Enqueue(c.UserContext(), GetUserID(c), &req)
	return c.Status(fiber.StatusOK).JSON(resp)
}

func (h *PublicationHandler) ListPublications(c *fiber.Ctx) error {
	var ownerID int64
	if id := GetUserID(c); id != nil {
		ownerID = *id
	}

	publications, err := h.s.List(c.UserContext(), ownerID)
	if err != nil {
		slog.Error(err.Error())
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Unable to list publications",
		})
	}

	return c.Status(fiber.StatusOK).JSON(publications)
}

func (h *PublicationHandler) GetPublication(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid publication id",
		})
	}

	p, err := h.s.Get(c.UserContext(), int64(id))
	if err != nil {
		slog.Error(err.Error())
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Unable to load publication",
		})
	}

	owner := GetUserID(c)
	if p == nil || (p.OwnerID != nil && (owner == nil || *p.OwnerID != *owner)) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Publication not found",
		})
	}

	return c.Status(fiber.StatusOK).JSON(p)
}

func (h *PublicationHandler) QueueStatus(c *fiber.Ctx) error {
	status, err := h.s.QueueStatus(c.UserContext())
	if err != nil {
		slog.Error(err.Error())
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Unable to read queue status",
		})
	}
	return c.Status(fiber.StatusOK).JSON(status)
}

func (h *PublicationHandler) UpdateQueue(c *fiber.Ctx) error {
	var req transfer.QueueUpdate
	if err := c.BodyParser(&req); err != nil || req.Running == nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Field 'running' is required",
		})
	}

	status, err := h.s.SetRunning(c.UserContext(), *req.Running)
	if err != nil {
		slog.Error(err.Error())
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Unable to read queue status",
		})
	}
	return c.Status(fiber.StatusOK).JSON(status)
}
