package publisher

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"

	config "github.com/maheshrc27/postgen/configs"
	"github.com/maheshrc27/postgen/internal/models"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"
)

const youtubeTitleLimit = 100

type youtubePublisher struct {
	oauth        *oauth2.Config
	refreshToken string
	client       *http.Client
	videos       VideoDir
}

func NewYoutubePublisher(cfg config.YouTube, client *http.Client, videos VideoDir) Publisher {
	return &youtubePublisher{
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			Scopes:       []string{youtube.YoutubeUploadScope},
			Endpoint:     google.Endpoint,
		},
		refreshToken: cfg.RefreshToken,
		client:       client,
		videos:       videos,
	}
}

func (p *youtubePublisher) Check(media Media) *Result {
	if p.oauth.ClientID == "" || p.oauth.ClientSecret == "" || p.refreshToken == "" {
		return failure(models.ErrConfig, "YouTube credentials not configured.")
	}
	if media.Kind != MediaVideoFile {
		return failure(models.ErrValidation, "YouTube requires a video.")
	}
	if _, ok := p.videos.Resolve(media.Ref); !ok {
		return failure(models.ErrFile, fmt.Sprintf("Video file not found: %s", media.Ref))
	}
	return nil
}

func (p *youtubePublisher) Publish(ctx context.Context, text string, media Media) Result {
	if r := p.Check(media); r != nil {
		return *r
	}

	service, err := p.service(ctx)
	if err != nil {
		log.Printf("Error creating YouTube service: %v", err)
		return Failed(models.ErrConfig, err.Error())
	}

	path, _ := p.videos.Resolve(media.Ref)
	file, err := os.Open(path)
	if err != nil {
		return Failed(models.ErrFile, fmt.Sprintf("error opening video file: %v", err))
	}
	defer file.Close()

	video := &youtube.Video{
		Snippet: &youtube.VideoSnippet{
			Title:       videoTitle(text),
			Description: text,
			CategoryId:  "22",
		},
		Status: &youtube.VideoStatus{
			PrivacyStatus: "public",
		},
	}

	response, err := service.Videos.Insert([]string{"snippet", "status"}, video).Context(ctx).Media(file).Do()
	if err != nil {
		log.Printf("Error uploading video: %v", err)
		var apiErr *googleapi.Error
		if errors.As(err, &apiErr) {
			return Failed(models.ErrAPI, apiErr.Error())
		}
		var retrieveErr *oauth2.RetrieveError
		if errors.As(err, &retrieveErr) {
			return Failed(models.ErrAPI, retrieveErr.Error())
		}
		return transportFailure(err)
	}

	return Published(response.Id, fmt.Sprintf("Video uploaded: https://youtu.be/%s", response.Id))
}

func (p *youtubePublisher) service(ctx context.Context) (*youtube.Service, error) {
	tokenCtx := context.WithValue(ctx, oauth2.HTTPClient, p.client)
	source := p.oauth.TokenSource(tokenCtx, &oauth2.Token{RefreshToken: p.refreshToken})
	client := oauth2.NewClient(tokenCtx, source)

	return youtube.NewService(ctx, option.WithHTTPClient(client))
}

// videoTitle uses the first line of the post, cut to YouTube's title limit.
func videoTitle(text string) string {
	title := strings.TrimSpace(text)
	if i := strings.IndexByte(title, '\n'); i >= 0 {
		title = strings.TrimSpace(title[:i])
	}
	if runes := []rune(title); len(runes) > youtubeTitleLimit {
		title = string(runes[:youtubeTitleLimit])
	}
	if title == "" {
		title = "Video"
	}
	return title
}
