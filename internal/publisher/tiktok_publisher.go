package publisher

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"

	"github.com/h2non/filetype"
	config "github.com/maheshrc27/postgen/configs"
	"github.com/maheshrc27/postgen/internal/models"
	"github.com/maheshrc27/postgen/internal/transfer"
)

const tiktokBaseURL = "https://open.tiktokapis.com"

type tiktokPublisher struct {
	accessToken string
	baseURL     string
	client      *http.Client
	videos      VideoDir
}

func NewTiktokPublisher(cfg config.TikTok, client *http.Client, videos VideoDir) Publisher {
	return &tiktokPublisher{
		accessToken: cfg.AccessToken,
		baseURL:     tiktokBaseURL,
		client:      client,
		videos:      videos,
	}
}

func (p *tiktokPublisher) Check(media Media) *Result {
	if p.accessToken == "" {
		return failure(models.ErrConfig, "TikTok access token not configured.")
	}
	if media.Kind != MediaVideoFile {
		return failure(models.ErrValidation, "TikTok requires a video.")
	}
	if _, ok := p.videos.Resolve(media.Ref); !ok {
		return failure(models.ErrFile, fmt.Sprintf("Video file not found: %s", media.Ref))
	}
	return nil
}

// Publish opens a FILE_UPLOAD session declaring a single chunk and then PUTs the whole file.
func (p *tiktokPublisher) Publish(ctx context.Context, text string, media Media) Result {
	if r := p.Check(media); r != nil {
		return *r
	}

	path, _ := p.videos.Resolve(media.Ref)
	video, err := os.ReadFile(path)
	if err != nil {
		return Failed(models.ErrFile, fmt.Sprintf("error reading video file: %v", err))
	}
	size := int64(len(video))
	if size == 0 {
		return Failed(models.ErrFile, fmt.Sprintf("Video file is empty: %s", media.Ref))
	}

	// Step 1: open the upload session
	initRequest := transfer.VideoInitRequest{
		PostInfo: transfer.VideoPostInfo{
			Title:                 text,
			PrivacyLevel:          "PUBLIC_TO_EVERYONE",
			VideoCoverTimestampMs: 1000,
			IsAIGC:                true,
		},
		SourceInfo: transfer.VideoFileSourceInfo{
			Source:          "FILE_UPLOAD",
			VideoSize:       size,
			ChunkSize:       size,
			TotalChunkCount: 1,
		},
	}

	session, r := p.initUpload(ctx, initRequest)
	if r != nil {
		return *r
	}

	// Step 2: upload the binary in one chunk
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, session.UploadURL, bytes.NewReader(video))
	if err != nil {
		return Failed(models.ErrUpload, err.Error())
	}
	req.ContentLength = size
	req.Header.Set("Content-Type", videoContentType(video))
	req.Header.Set("Content-Range", fmt.Sprintf("bytes 0-%d/%d", size-1, size))

	resp, err := p.client.Do(req)
	if err != nil {
		log.Println("Error uploading video to TikTok:", err)
		return transportFailure(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return Failed(models.ErrUpload, fmt.Sprintf("upload failed with status %d: %s", resp.StatusCode, string(body)))
	}

	return Published(session.PublishID, "Video uploaded to TikTok")
}

func (p *tiktokPublisher) initUpload(ctx context.Context, body transfer.VideoInitRequest) (*transfer.TiktokInitData, *Result) {
	jsonData, err := json.Marshal(body)
	if err != nil {
		return nil, failure(models.ErrInit, err.Error())
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/v2/post/publish/video/init/", bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, failure(models.ErrInit, err.Error())
	}
	req.Header.Set("Authorization", "Bearer "+p.accessToken)
	req.Header.Set("Content-Type", "application/json; charset=UTF-8")

	resp, err := p.client.Do(req)
	if err != nil {
		r := transportFailure(err)
		return nil, &r
	}
	defer resp.Body.Close()

	var result transfer.TikTokInitResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, failure(models.ErrInit, fmt.Sprintf("invalid init response (status %d): %v", resp.StatusCode, err))
	}

	if resp.StatusCode != http.StatusOK || result.Error.Failed() {
		msg := result.Error.Message
		if msg == "" {
			msg = fmt.Sprintf("init failed with status %d", resp.StatusCode)
		}
		return nil, failure(models.ErrInit, msg)
	}
	if result.Data.UploadURL == "" {
		return nil, failure(models.ErrInit, "TikTok returned no upload URL")
	}

	return &result.Data, nil
}

func videoContentType(data []byte) string {
	if kind, err := filetype.Match(data); err == nil && filetype.IsVideo(data) {
		return kind.MIME.Value
	}
	return "video/mp4"
}
