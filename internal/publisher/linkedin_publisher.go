package publisher

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	config "github.com/maheshrc27/postgen/configs"
	"github.com/maheshrc27/postgen/internal/models"
	"github.com/maheshrc27/postgen/internal/transfer"
	"golang.org/x/oauth2"
)

const linkedinBaseURL = "https://api.linkedin.com"

type linkedinPublisher struct {
	accessToken string
	authorURN   string
	baseURL     string
	client      *http.Client
}

func NewLinkedInPublisher(cfg config.LinkedIn, client *http.Client) Publisher {
	return &linkedinPublisher{
		accessToken: cfg.AccessToken,
		authorURN:   cfg.AuthorURN,
		baseURL:     linkedinBaseURL,
		client:      client,
	}
}

func (p *linkedinPublisher) Check(media Media) *Result {
	if p.accessToken == "" || p.authorURN == "" {
		return failure(models.ErrConfig, "LinkedIn credentials not configured.")
	}
	return nil
}

func (p *linkedinPublisher) Publish(ctx context.Context, text string, media Media) Result {
	if r := p.Check(media); r != nil {
		return *r
	}

	content := transfer.LinkedInShareContent{
		ShareCommentary:    transfer.LinkedInText{Text: text},
		ShareMediaCategory: "NONE",
	}
	if media.Kind == MediaImageURL {
		content.ShareMediaCategory = "ARTICLE"
		content.Media = []transfer.LinkedInMedia{{Status: "READY", OriginalURL: media.Ref}}
	}

	share := transfer.LinkedInShare{
		Author:          p.authorURN,
		LifecycleState:  "PUBLISHED",
		SpecificContent: transfer.LinkedInSpecific{ShareContent: content},
		Visibility:      map[string]string{"com.linkedin.ugc.MemberNetworkVisibility": "PUBLIC"},
	}

	jsonData, err := json.Marshal(share)
	if err != nil {
		return Failed(models.ErrException, err.Error())
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/v2/ugcPosts", bytes.NewBuffer(jsonData))
	if err != nil {
		return Failed(models.ErrException, err.Error())
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Restli-Protocol-Version", "2.0.0")

	// the oauth2 transport adds the bearer header on top of the shared client
	authCtx := context.WithValue(ctx, oauth2.HTTPClient, p.client)
	client := oauth2.NewClient(authCtx, oauth2.StaticTokenSource(&oauth2.Token{AccessToken: p.accessToken}))

	resp, err := client.Do(req)
	if err != nil {
		return transportFailure(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Failed(models.ErrException, err.Error())
	}

	var result transfer.LinkedInResponse
	if len(body) > 0 {
		_ = json.Unmarshal(body, &result)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 || result.ServiceErrorCode != nil {
		msg := result.Message
		if msg == "" {
			msg = fmt.Sprintf("LinkedIn returned status %d", resp.StatusCode)
		}
		return Failed(models.ErrAPI, msg)
	}

	id := result.ID
	if id == "" {
		id = resp.Header.Get("X-RestLi-Id")
	}
	return Published(id, "Published to LinkedIn")
}
