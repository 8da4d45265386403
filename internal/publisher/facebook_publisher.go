package publisher

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/h2non/filetype"
	config "github.com/maheshrc27/postgen/configs"
	"github.com/maheshrc27/postgen/internal/models"
	"github.com/maheshrc27/postgen/internal/transfer"
)

const graphBaseURL = "https://graph.facebook.com"

type facebookPublisher struct {
	pageID      string
	accessToken string
	baseURL     string
	client      *http.Client
	media       MediaDir
}

func NewFacebookPublisher(cfg config.Facebook, client *http.Client, media MediaDir) Publisher {
	return &facebookPublisher{
		pageID:      cfg.PageID,
		accessToken: cfg.PageAccessToken,
		baseURL:     fmt.Sprintf("%s/%s", graphBaseURL, cfg.GraphVersion),
		client:      client,
		media:       media,
	}
}

func (p *facebookPublisher) Check(media Media) *Result {
	if p.pageID == "" || p.accessToken == "" {
		return failure(models.ErrConfig, "Facebook credentials not configured.")
	}
	return nil
}

// Publish posts a photo when an image is attached, uploading the binary if the image is
// one of ours on disk, and a plain feed post otherwise.
func (p *facebookPublisher) Publish(ctx context.Context, text string, media Media) Result {
	if r := p.Check(media); r != nil {
		return *r
	}

	var req *http.Request
	var err error

	if media.Kind == MediaImageURL {
		endpoint := fmt.Sprintf("%s/%s/photos", p.baseURL, p.pageID)
		if localPath, ok := p.media.Resolve(media.Ref); ok {
			req, err = p.binaryPhotoRequest(ctx, endpoint, text, localPath)
			if err != nil {
				return Failed(models.ErrFile, err.Error())
			}
		} else {
			form := url.Values{}
			form.Set("url", media.Ref)
			form.Set("message", text)
			form.Set("access_token", p.accessToken)
			req, err = newFormRequest(ctx, endpoint, form)
		}
	} else {
		form := url.Values{}
		form.Set("message", text)
		form.Set("access_token", p.accessToken)
		req, err = newFormRequest(ctx, fmt.Sprintf("%s/%s/feed", p.baseURL, p.pageID), form)
	}
	if err != nil {
		return Failed(models.ErrException, err.Error())
	}

	resp, err := p.client.Do(req)
	if err != nil {
		slog.Info("facebook publish failed", "error", err)
		return transportFailure(err)
	}
	defer resp.Body.Close()

	result, err := decodeGraph(resp)
	if err != nil {
		if resp.StatusCode >= http.StatusBadRequest {
			return Failed(models.ErrAPI, fmt.Sprintf("unexpected status code from Facebook: %d", resp.StatusCode))
		}
		return Failed(models.ErrException, err.Error())
	}
	if result.Error != nil {
		return Failed(models.ErrAPI, result.Error.Message)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return Failed(models.ErrAPI, fmt.Sprintf("unexpected status code from Facebook: %d", resp.StatusCode))
	}

	id := result.PostID
	if id == "" {
		id = result.ID
	}
	return Published(id, "Published to Facebook")
}

func (p *facebookPublisher) binaryPhotoRequest(ctx context.Context, endpoint, text, localPath string) (*http.Request, error) {
	data, err := os.ReadFile(localPath)
	if err != nil {
		return nil, fmt.Errorf("error reading media file: %w", err)
	}

	contentType := "application/octet-stream"
	if kind, err := filetype.Match(data); err == nil && kind != filetype.Unknown {
		contentType = kind.MIME.Value
	}

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	_ = writer.WriteField("message", text)
	_ = writer.WriteField("access_token", p.accessToken)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="source"; filename="%s"`, filepath.Base(localPath)))
	header.Set("Content-Type", contentType)
	part, err := writer.CreatePart(header)
	if err != nil {
		return nil, err
	}
	if _, err := part.Write(data); err != nil {
		return nil, err
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req, nil
}

func newFormRequest(ctx context.Context, endpoint string, form url.Values) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req, nil
}

func decodeGraph(resp *http.Response) (*transfer.GraphResponse, error) {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("error reading response body: %w", err)
	}
	var result transfer.GraphResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("error parsing response (status %d): %w", resp.StatusCode, err)
	}
	return &result, nil
}
