package publisher

import (
	"context"
	"fmt"
	"net/http"
	"sort"

	config "github.com/maheshrc27/postgen/configs"
	"github.com/maheshrc27/postgen/internal/models"
)

type Registry struct {
	publishers map[string]Publisher
}

func NewRegistry() *Registry {
	return &Registry{publishers: make(map[string]Publisher)}
}

// NewDefaultRegistry wires every supported platform from configuration.
func NewDefaultRegistry(cfg config.Config, client *http.Client, mediaDir MediaDir, videoDir VideoDir) *Registry {
	r := NewRegistry()
	r.Register(models.PlatformFacebook, NewFacebookPublisher(cfg.Facebook, client, mediaDir))
	r.Register(models.PlatformInstagram, NewInstagramPublisher(cfg.Facebook, cfg.Instagram, client))
	r.Register(models.PlatformLinkedIn, NewLinkedInPublisher(cfg.LinkedIn, client))
	r.Register(models.PlatformTikTok, NewTiktokPublisher(cfg.TikTok, client, videoDir))
	r.Register(models.PlatformWhatsApp, NewWhatsAppPublisher(cfg.WhatsApp, client))
	r.Register(models.PlatformYouTube, NewYoutubePublisher(cfg.YouTube, client, videoDir))
	return r
}

func (r *Registry) Register(platform string, p Publisher) {
	r.publishers[platform] = p
}

func (r *Registry) Supports(platform string) bool {
	_, ok := r.publishers[platform]
	return ok
}

func (r *Registry) Platforms() []string {
	out := make([]string, 0, len(r.publishers))
	for p := range r.publishers {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// Check runs the adapter's offline validation, if it has one.
func (r *Registry) Check(platform string, media Media) *Result {
	p, ok := r.publishers[platform]
	if !ok {
		return unsupported(platform)
	}
	if c, ok := p.(Checker); ok {
		return c.Check(media)
	}
	return nil
}

func (r *Registry) Publish(ctx context.Context, platform, text string, media Media) Result {
	p, ok := r.publishers[platform]
	if !ok {
		return *unsupported(platform)
	}
	return p.Publish(ctx, text, media)
}

func unsupported(platform string) *Result {
	return failure(models.ErrPlatformUnsupported, fmt.Sprintf("platform %q is not supported for publishing", platform))
}
