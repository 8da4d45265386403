package config

import (
	"os"
	"strconv"
	"time"
)

type R2 struct {
	AccountID  string
	AccessKey  string
	SecretKey  string
	BucketName string
	PublicURL  string
}

type OpenAI struct {
	APIKey     string
	BaseURL    string
	Model      string
	ImageModel string
}

type Facebook struct {
	PageID          string
	PageAccessToken string
	GraphVersion    string
}

type Instagram struct {
	BusinessAccountID string
}

type LinkedIn struct {
	AccessToken string
	AuthorURN   string
}

type TikTok struct {
	AccessToken string
}

type WhatsApp struct {
	APIToken       string
	PhoneID        string
	RecipientPhone string
}

type YouTube struct {
	ClientID     string
	ClientSecret string
	RefreshToken string
}

type Config struct {
	Port                 string
	PostgresURI          string
	RedisURI             string
	SecretKey            string
	CookieName           string
	StaticDir            string
	LocalBaseURL         string
	PublicURL            string
	FFmpegPath           string
	VideoDurationSeconds int
	QueueInterval        time.Duration
	PublishTimeout       time.Duration
	PublicationLease     time.Duration
	OpenAI               OpenAI
	Facebook             Facebook
	Instagram            Instagram
	LinkedIn             LinkedIn
	TikTok               TikTok
	WhatsApp             WhatsApp
	YouTube              YouTube
	R2                   R2
}

func LoadConfig() *Config {
	return &Config{
		Port:                 getEnv("PORT", "8080"),
		PostgresURI:          getEnv("POSTGRES_URI", ""),
		RedisURI:             getEnv("REDIS_URI", ""),
		SecretKey:            getEnv("SECRET_KEY", ""),
		CookieName:           getEnv("COOKIE_NAME", "postgen_session"),
		StaticDir:            getEnv("STATIC_DIR", "static"),
		LocalBaseURL:         getEnv("LOCAL_BASE_URL", "http://127.0.0.1:8080"),
		PublicURL:            getEnv("PUBLIC_URL", ""),
		FFmpegPath:           getEnv("FFMPEG_PATH", "ffmpeg"),
		VideoDurationSeconds: getEnvInt("VIDEO_DURATION_SECONDS", 5),
		QueueInterval:        getEnvDuration("QUEUE_INTERVAL", 10*time.Second),
		PublishTimeout:       getEnvDuration("PUBLISH_TIMEOUT", 60*time.Second),
		PublicationLease:     getEnvDuration("PUBLICATION_LEASE", 15*time.Minute),
		OpenAI: OpenAI{
			APIKey:     getEnv("OPENAI_API_KEY", ""),
			BaseURL:    getEnv("OPENAI_BASE_URL", ""),
			Model:      getEnv("OPENAI_MODEL", "gpt-3.5-turbo"),
			ImageModel: getEnv("OPENAI_IMAGE_MODEL", "dall-e-2"),
		},
		Facebook: Facebook{
			PageID:          getEnv("FB_PAGE_ID", ""),
			PageAccessToken: getEnv("FB_PAGE_ACCESS_TOKEN", ""),
			GraphVersion:    getEnv("FB_GRAPH_VERSION", "v18.0"),
		},
		Instagram: Instagram{
			BusinessAccountID: getEnv("IG_BUSINESS_ACCOUNT_ID", ""),
		},
		LinkedIn: LinkedIn{
			AccessToken: getEnv("LINKEDIN_ACCESS_TOKEN", ""),
			AuthorURN:   getEnv("LINKEDIN_AUTHOR_URN", ""),
		},
		TikTok: TikTok{
			AccessToken: getEnv("TIKTOK_ACCESS_TOKEN", ""),
		},
		WhatsApp: WhatsApp{
			APIToken:       getEnv("WHATSAPP_API_TOKEN", ""),
			PhoneID:        getEnv("WHATSAPP_PHONE_ID", ""),
			RecipientPhone: getEnv("WHATSAPP_RECIPIENT_PHONE", ""),
		},
		YouTube: YouTube{
			ClientID:     getEnv("GOOGLE_CLIENT_ID", ""),
			ClientSecret: getEnv("GOOGLE_CLIENT_SECRET", ""),
			RefreshToken: getEnv("YOUTUBE_REFRESH_TOKEN", ""),
		},
		R2: R2{
			AccountID:  getEnv("R2_ACCOUNT_ID", ""),
			AccessKey:  getEnv("R2_ACCESS_KEY", ""),
			SecretKey:  getEnv("R2_SECRET_KEY", ""),
			BucketName: getEnv("R2_BUCKET_NAME", ""),
			PublicURL:  getEnv("R2_PUBLIC_URL", ""),
		},
	}
}

// Enabled reports whether every value needed to talk to the bucket is present.
func (r R2) Enabled() bool {
	return r.AccountID != "" && r.AccessKey != "" && r.SecretKey != "" && r.BucketName != "" && r.PublicURL != ""
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
