package publisher

import (
	"context"
	"errors"
	"net"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/maheshrc27/postgen/internal/models"
)

type MediaKind int

const (
	MediaNone MediaKind = iota
	MediaImageURL
	MediaVideoFile
)

// Media is what a publication carries besides its text: nothing, a remote image or a local video file.
type Media struct {
	Kind MediaKind
	Ref  string
}

var NoMedia = Media{}

func ImageURL(u string) Media {
	if u == "" {
		return NoMedia
	}
	return Media{Kind: MediaImageURL, Ref: u}
}

func VideoFile(p string) Media {
	if p == "" {
		return NoMedia
	}
	return Media{Kind: MediaVideoFile, Ref: p}
}

// SelectMedia picks the media reference a platform consumes from a publication's stored fields.
// Video platforms prefer the local video; everyone else gets the image URL.
func SelectMedia(platform, mediaURL, videoPath string) Media {
	switch platform {
	case models.PlatformTikTok, models.PlatformYouTube:
		if videoPath != "" {
			return VideoFile(videoPath)
		}
	}
	return ImageURL(mediaURL)
}

type Result struct {
	Success   bool             `json:"success"`
	ID        string           `json:"id,omitempty"`
	Message   string           `json:"message,omitempty"`
	ErrorKind models.ErrorKind `json:"error_kind,omitempty"`
}

func Published(id, message string) Result {
	return Result{Success: true, ID: id, Message: message}
}

func Failed(kind models.ErrorKind, message string) Result {
	return Result{ErrorKind: kind, Message: message}
}

func failure(kind models.ErrorKind, message string) *Result {
	r := Failed(kind, message)
	return &r
}

type Publisher interface {
	Publish(ctx context.Context, text string, media Media) Result
}

// Checker is implemented by publishers that can reject a request without calling out.
type Checker interface {
	Check(media Media) *Result
}

func transportFailure(err error) Result {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return Failed(models.ErrTimeout, err.Error())
	}
	return Failed(models.ErrException, err.Error())
}

// MediaDir is the directory generated images are written to.
type MediaDir string

// Resolve maps any URL, local or public, to a file in the media directory with the same name.
func (d MediaDir) Resolve(rawURL string) (string, bool) {
	if d == "" || rawURL == "" {
		return "", false
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", false
	}
	name := path.Base(u.Path)
	if name == "." || name == "/" || name == "" {
		return "", false
	}
	local := filepath.Join(string(d), name)
	info, err := os.Stat(local)
	if err != nil || info.IsDir() {
		return "", false
	}
	return local, true
}

func isLoopbackURL(rawURL string) bool {
	if strings.Contains(rawURL, "127.0.0.1") || strings.Contains(rawURL, "localhost") {
		return true
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	ip := net.ParseIP(u.Hostname())
	return ip != nil && ip.IsLoopback()
}

// VideoDir is the directory derived videos are written to. Video publishers only upload from it.
type VideoDir string

// Resolve returns the real path of a regular file directly inside the directory.
// Paths outside it, including symlinks that point elsewhere, are refused.
func (d VideoDir) Resolve(p string) (string, bool) {
	if d == "" || p == "" {
		return "", false
	}
	dir, err := realPath(string(d))
	if err != nil {
		return "", false
	}
	file, err := realPath(p)
	if err != nil || filepath.Dir(file) != dir {
		return "", false
	}
	info, err := os.Stat(file)
	if err != nil || !info.Mode().IsRegular() {
		return "", false
	}
	return file, true
}

func realPath(p string) (string, error) {
	abs, err := filepath.Abs(p)
	if err != nil {
		return "", err
	}
	return filepath.EvalSymlinks(abs)
}
