package models

import "time"

type Publication struct {
	ID           int64      `db:"id" json:"id"`
	OwnerID      *int64     `db:"owner_id" json:"owner_id,omitempty"`
	Platform     string     `db:"platform" json:"platform"`
	Text         string     `db:"text" json:"text"`
	MediaURL     string     `db:"media_url" json:"media_url,omitempty"`
	VideoPath    string     `db:"video_path" json:"video_path,omitempty"`
	Status       string     `db:"status" json:"status"` // pending, processing, published, failed
	ExternalID   string     `db:"external_id" json:"external_id,omitempty"`
	ErrorKind    ErrorKind  `db:"error_kind" json:"error_kind,omitempty"`
	ErrorMessage string     `db:"error_message" json:"error_message,omitempty"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	ClaimedAt    *time.Time `db:"claimed_at" json:"claimed_at,omitempty"`
	ProcessedAt  *time.Time `db:"processed_at" json:"processed_at,omitempty"`
}

const (
	PublicationStatusPending    = "pending"
	PublicationStatusProcessing = "processing"
	PublicationStatusPublished  = "published"
	PublicationStatusFailed     = "failed"
)

const (
	PlatformFacebook  = "facebook"
	PlatformInstagram = "instagram"
	PlatformLinkedIn  = "linkedin"
	PlatformTikTok    = "tiktok"
	PlatformWhatsApp  = "whatsapp"
	PlatformYouTube   = "youtube"
)

// DefaultPlatforms is used when a generation request names no platform.
var DefaultPlatforms = []string{
	PlatformFacebook,
	PlatformInstagram,
	PlatformTikTok,
	PlatformLinkedIn,
	PlatformWhatsApp,
}

// ShortVideoPlatform is the only platform that receives a script and a derived video.
const ShortVideoPlatform = PlatformTikTok
