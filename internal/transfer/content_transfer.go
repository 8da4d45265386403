package transfer

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/maheshrc27/postgen/internal/models"
)

type GenerateRequest struct {
	Title     string   `json:"title"`
	Body      string   `json:"body"`
	Platforms []string `json:"platforms"`
}

type PublishRequest struct {
	Platform  string `json:"platform"`
	Text      string `json:"text"`
	MediaURL  string `json:"media_url"`
	VideoPath string `json:"video_path"`
}

type PublishResponse struct {
	Success       bool             `json:"success"`
	Message       string           `json:"message"`
	PublicationID int64            `json:"publication_id,omitempty"`
	Status        string           `json:"status"`
	ErrorKind     models.ErrorKind `json:"error_kind,omitempty"`
}

type QueueStatus struct {
	Running      bool  `json:"running"`
	PendingCount int64 `json:"pending_count"`
}

type QueueUpdate struct {
	Running *bool `json:"running"`
}

type CustomClaims struct {
	UserID string `json:"user_id"`
	jwt.RegisteredClaims
}
