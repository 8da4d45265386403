package publisher

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	config "github.com/maheshrc27/postgen/configs"
	"github.com/maheshrc27/postgen/internal/models"
)

const instagramHeadTimeout = 5 * time.Second

type instagramPublisher struct {
	accountID   string
	accessToken string
	baseURL     string
	client      *http.Client
}

func NewInstagramPublisher(fb config.Facebook, ig config.Instagram, client *http.Client) Publisher {
	return &instagramPublisher{
		accountID:   ig.BusinessAccountID,
		accessToken: fb.PageAccessToken,
		baseURL:     fmt.Sprintf("%s/%s", graphBaseURL, fb.GraphVersion),
		client:      client,
	}
}

func (p *instagramPublisher) Check(media Media) *Result {
	if p.accountID == "" || p.accessToken == "" {
		return failure(models.ErrConfig, "Instagram credentials not configured.")
	}
	if media.Kind != MediaImageURL {
		return failure(models.ErrValidation, "Image URL is required for Instagram.")
	}
	if isLoopbackURL(media.Ref) {
		return failure(models.ErrLocalhost, "Instagram cannot fetch images from localhost. Use a publicly reachable URL.")
	}
	return nil
}

func (p *instagramPublisher) Publish(ctx context.Context, text string, media Media) Result {
	if r := p.Check(media); r != nil {
		return *r
	}

	if r := p.checkContentType(ctx, media.Ref); r != nil {
		return *r
	}

	form := url.Values{}
	form.Set("image_url", media.Ref)
	form.Set("caption", text)
	form.Set("access_token", p.accessToken)

	container, r := p.post(ctx, fmt.Sprintf("%s/%s/media", p.baseURL, p.accountID), form)
	if r != nil {
		return *r
	}

	form = url.Values{}
	form.Set("creation_id", container)
	form.Set("access_token", p.accessToken)

	id, r := p.post(ctx, fmt.Sprintf("%s/%s/media_publish", p.baseURL, p.accountID), form)
	if r != nil {
		return *r
	}

	return Published(id, "Published to Instagram")
}

// checkContentType rejects URLs that are reachable but do not serve an image.
// An unreachable HEAD is not treated as fatal.
func (p *instagramPublisher) checkContentType(ctx context.Context, imageURL string) *Result {
	headCtx, cancel := context.WithTimeout(ctx, instagramHeadTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(headCtx, http.MethodHead, imageURL, nil)
	if err != nil {
		slog.Info("instagram media check skipped", "url", imageURL, "error", err)
		return nil
	}
	resp, err := p.client.Do(req)
	if err != nil {
		slog.Info("instagram media check failed", "url", imageURL, "error", err)
		return nil
	}
	defer resp.Body.Close()

	contentType := resp.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		return failure(models.ErrInvalidMediaType, fmt.Sprintf("URL does not serve an image (Content-Type: %s)", contentType))
	}
	return nil
}

func (p *instagramPublisher) post(ctx context.Context, endpoint string, form url.Values) (string, *Result) {
	req, err := newFormRequest(ctx, endpoint, form)
	if err != nil {
		return "", failure(models.ErrException, err.Error())
	}

	resp, err := p.client.Do(req)
	if err != nil {
		r := transportFailure(err)
		return "", &r
	}
	defer resp.Body.Close()

	result, err := decodeGraph(resp)
	if err != nil {
		if resp.StatusCode >= http.StatusBadRequest {
			return "", failure(models.ErrAPI, fmt.Sprintf("unexpected status code from Instagram: %d", resp.StatusCode))
		}
		return "", failure(models.ErrException, err.Error())
	}
	if result.Error != nil {
		return "", failure(models.ErrAPI, result.Error.Message)
	}
	if result.ID == "" {
		return "", failure(models.ErrAPI, fmt.Sprintf("Instagram returned no id (status %d)", resp.StatusCode))
	}
	return result.ID, nil
}
