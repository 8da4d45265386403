package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/h2non/filetype"
	config "github.com/maheshrc27/postgen/configs"
	"github.com/maheshrc27/postgen/internal/models"
	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/sashabaranov/go-openai"
)

const maxImageBytes = 20 << 20

// ImageCreator is the part of the OpenAI client used for image generation.
type ImageCreator interface {
	CreateImage(ctx context.Context, request openai.ImageRequest) (openai.ImageResponse, error)
}

type MediaService struct {
	images       ImageCreator
	imageModel   string
	encoder      VideoEncoder
	store        ObjectStore
	client       *http.Client
	maxImage     int64
	mediaDir     string
	videoDir     string
	localBaseURL string
	publicURL    string
	videoSeconds int
}

// NewMediaService accepts nil images, encoder and store; each missing backend disables its step.
func NewMediaService(cfg config.Config, images ImageCreator, encoder VideoEncoder, store ObjectStore, client *http.Client) *MediaService {
	return &MediaService{
		images:       images,
		imageModel:   cfg.OpenAI.ImageModel,
		encoder:      encoder,
		store:        store,
		client:       client,
		maxImage:     maxImageBytes,
		mediaDir:     filepath.Join(cfg.StaticDir, "media"),
		videoDir:     filepath.Join(cfg.StaticDir, "videos"),
		localBaseURL: strings.TrimRight(cfg.LocalBaseURL, "/"),
		publicURL:    strings.TrimRight(cfg.PublicURL, "/"),
		videoSeconds: cfg.VideoDurationSeconds,
	}
}

func (s *MediaService) MediaDir() string {
	return s.mediaDir
}

func (s *MediaService) VideoDir() string {
	return s.videoDir
}

// Attach derives at most one master image for the generation and shares it with every
// platform that has content. The first platform carrying an image prompt decides the image.
func (s *MediaService) Attach(ctx context.Context, gen *models.Generation, requested []string) *models.MasterAsset {
	size := openai.CreateImageSize512x512
	for _, p := range requested {
		if p == models.ShortVideoPlatform {
			size = openai.CreateImageSize1024x1024
			break
		}
	}

	var localPath, publicURL string
	for _, p := range gen.Platforms() {
		c, _ := gen.Get(p)
		if c.Failed() || c.ImagePrompt == "" {
			continue
		}
		localPath, publicURL = s.DeriveMasterImage(ctx, c.ImagePrompt, size)
		break
	}
	if publicURL == "" {
		return nil
	}

	asset := &models.MasterAsset{LocalPath: localPath, PublicURL: publicURL}
	displayURL := s.LocalURL(localPath)

	for _, p := range gen.Platforms() {
		c, _ := gen.Get(p)
		if c.Failed() {
			continue
		}
		c.MediaURL = publicURL
		c.DisplayURL = displayURL
	}

	if c, ok := gen.Get(models.ShortVideoPlatform); ok && !c.Failed() && c.Script != "" && localPath != "" {
		if video := s.DeriveVideo(ctx, localPath, s.videoSeconds); video != "" {
			c.VideoPath = video
			c.DisplayVideoURL = s.LocalURL(video)
			asset.VideoPath = video
		}
	}

	return asset
}

// DeriveMasterImage generates one image, stores it in the media directory and returns its
// local path and the URL the networks should fetch. Failures return empty strings.
func (s *MediaService) DeriveMasterImage(ctx context.Context, prompt, size string) (string, string) {
	if s.images == nil {
		slog.Info("image generation skipped: OpenAI API Key not configured")
		return "", ""
	}

	resp, err := s.images.CreateImage(ctx, openai.ImageRequest{
		Model:          s.imageModel,
		Prompt:         prompt,
		N:              1,
		Size:           size,
		ResponseFormat: openai.CreateImageResponseFormatURL,
	})
	if err != nil {
		slog.Error("image generation failed", "error", err)
		return "", ""
	}
	if len(resp.Data) == 0 || resp.Data[0].URL == "" {
		slog.Error("image generation returned no URL")
		return "", ""
	}
	remoteURL := resp.Data[0].URL

	data, err := s.download(ctx, remoteURL)
	if err != nil {
		slog.Error("image download failed", "error", err)
		return "", ""
	}

	if !filetype.IsImage(data) {
		slog.Error("generated media is not an image", "url", remoteURL)
		return "", ""
	}
	kind, err := filetype.Match(data)
	if err != nil {
		slog.Error("unable to detect image type", "error", err)
		return "", ""
	}

	id, err := gonanoid.New()
	if err != nil {
		slog.Error("unable to name media file", "error", err)
		return "", ""
	}
	name := fmt.Sprintf("%s.%s", id, kind.Extension)

	if err := os.MkdirAll(s.mediaDir, 0o755); err != nil {
		slog.Error("unable to create media directory", "error", err)
		return "", ""
	}
	localPath := filepath.Join(s.mediaDir, name)
	if err := os.WriteFile(localPath, data, 0o644); err != nil {
		slog.Error("unable to write media file", "error", err)
		return "", ""
	}

	return localPath, s.publicImageURL(ctx, name, data, kind.MIME.Value, remoteURL)
}

// publicImageURL prefers object storage, then the configured public base, then the generator's URL.
func (s *MediaService) publicImageURL(ctx context.Context, name string, data []byte, contentType, remoteURL string) string {
	if s.store != nil {
		key := "media/" + name
		if err := s.store.UploadToR2(ctx, key, data, contentType); err == nil {
			return s.store.PublicURL(key)
		}
		slog.Info("falling back from R2 upload", "file", name)
	}
	if s.publicURL != "" {
		return s.publicURL + "/static/media/" + name
	}
	return remoteURL
}

// DeriveVideo renders a still video from the image. An empty result means no video.
func (s *MediaService) DeriveVideo(ctx context.Context, imagePath string, seconds int) string {
	if s.encoder == nil {
		slog.Info("video generation skipped: no encoder available")
		return ""
	}

	id, err := gonanoid.New()
	if err != nil {
		slog.Error("unable to name video file", "error", err)
		return ""
	}
	if err := os.MkdirAll(s.videoDir, 0o755); err != nil {
		slog.Error("unable to create video directory", "error", err)
		return ""
	}
	outPath := filepath.Join(s.videoDir, id+".mp4")

	if err := s.encoder.Encode(ctx, imagePath, outPath, seconds); err != nil {
		slog.Error("video generation failed", "error", err)
		_ = os.Remove(outPath)
		return ""
	}
	return outPath
}

// LocalURL is the address the bundled frontend uses to display a generated file.
func (s *MediaService) LocalURL(path string) string {
	if path == "" {
		return ""
	}
	folder := "media"
	if filepath.Dir(path) == filepath.Clean(s.videoDir) {
		folder = "videos"
	}
	return fmt.Sprintf("%s/static/%s/%s", s.localBaseURL, folder, filepath.Base(path))
}

func (s *MediaService) download(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to download image: status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, s.maxImage+1))
	if err != nil {
		return nil, fmt.Errorf("failed to download image: %w", err)
	}
	if int64(len(data)) > s.maxImage {
		return nil, fmt.Errorf("failed to download image: larger than %d bytes", s.maxImage)
	}
	return data, nil
}
