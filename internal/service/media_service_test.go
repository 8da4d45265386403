package service

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	config "github.com/maheshrc27/postgen/configs"
	"github.com/maheshrc27/postgen/internal/models"
	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngBytes = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0x0d, 'I', 'H', 'D', 'R', 0, 0, 0, 1}

type fakeImages struct {
	url      string
	err      error
	requests []openai.ImageRequest
}

func (f *fakeImages) CreateImage(ctx context.Context, req openai.ImageRequest) (openai.ImageResponse, error) {
	f.requests = append(f.requests, req)
	if f.err != nil {
		return openai.ImageResponse{}, f.err
	}
	return openai.ImageResponse{Data: []openai.ImageResponseDataInner{{URL: f.url}}}, nil
}

type fakeEncoder struct {
	calls   int
	seconds int
	err     error
}

func (f *fakeEncoder) Encode(ctx context.Context, imagePath, outPath string, seconds int) error {
	f.calls++
	f.seconds = seconds
	if f.err != nil {
		return f.err
	}
	return os.WriteFile(outPath, []byte("video"), 0o644)
}

type fakeStore struct {
	keys []string
	err  error
}

func (f *fakeStore) UploadToR2(ctx context.Context, key string, file []byte, filetype string) error {
	f.keys = append(f.keys, key)
	return f.err
}

func (f *fakeStore) PublicURL(key string) string {
	return "https://media.example.com/" + key
}

func imageServer(t *testing.T, body []byte) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func mediaConfig(t *testing.T) config.Config {
	return config.Config{
		StaticDir:            t.TempDir(),
		LocalBaseURL:         "http://127.0.0.1:8080",
		VideoDurationSeconds: 5,
		OpenAI:               config.OpenAI{ImageModel: openai.CreateImageModelDallE2},
	}
}

func sampleGeneration() *models.Generation {
	gen := models.NewGeneration()
	gen.Set("linkedin", models.NewFailure(models.ErrGenerationFailed, "missing"))
	gen.Set("facebook", &models.PlatformContent{Text: "fb", ImagePrompt: "primer prompt"})
	gen.Set("tiktok", &models.PlatformContent{Text: "tt", ImagePrompt: "segundo prompt", Script: "Escena 1"})
	gen.Set("whatsapp", &models.PlatformContent{Text: "wa"})
	return gen
}

func TestAttach_SharesOneImage(t *testing.T) {
	srv := imageServer(t, pngBytes)
	images := &fakeImages{url: srv.URL + "/generated.png"}
	encoder := &fakeEncoder{}
	cfg := mediaConfig(t)

	svc := NewMediaService(cfg, images, encoder, nil, srv.Client())
	gen := sampleGeneration()
	asset := svc.Attach(context.Background(), gen, []string{"linkedin", "facebook", "tiktok", "whatsapp"})
	require.NotNil(t, asset)

	require.Len(t, images.requests, 1)
	assert.Equal(t, "primer prompt", images.requests[0].Prompt)
	assert.Equal(t, openai.CreateImageSize1024x1024, images.requests[0].Size)

	assert.Equal(t, filepath.Join(cfg.StaticDir, "media"), filepath.Dir(asset.LocalPath))
	assert.True(t, strings.HasSuffix(asset.LocalPath, ".png"))
	data, err := os.ReadFile(asset.LocalPath)
	require.NoError(t, err)
	assert.Equal(t, pngBytes, data)

	// without R2 or PUBLIC_URL the generator's own URL is shared
	assert.Equal(t, srv.URL+"/generated.png", asset.PublicURL)

	for _, p := range []string{"facebook", "tiktok", "whatsapp"} {
		c, _ := gen.Get(p)
		assert.Equal(t, asset.PublicURL, c.MediaURL, p)
		assert.Equal(t, "http://127.0.0.1:8080/static/media/"+filepath.Base(asset.LocalPath), c.DisplayURL, p)
	}
	failed, _ := gen.Get("linkedin")
	assert.Empty(t, failed.MediaURL)

	tt, _ := gen.Get("tiktok")
	require.NotEmpty(t, tt.VideoPath)
	assert.Equal(t, asset.VideoPath, tt.VideoPath)
	assert.Equal(t, "http://127.0.0.1:8080/static/videos/"+filepath.Base(tt.VideoPath), tt.DisplayVideoURL)
	assert.Equal(t, 1, encoder.calls)
	assert.Equal(t, 5, encoder.seconds)

	fb, _ := gen.Get("facebook")
	assert.Empty(t, fb.VideoPath)
}

func TestAttach_SmallImageWithoutTiktok(t *testing.T) {
	srv := imageServer(t, pngBytes)
	images := &fakeImages{url: srv.URL + "/a.png"}
	encoder := &fakeEncoder{}

	svc := NewMediaService(mediaConfig(t), images, encoder, nil, srv.Client())
	gen := models.NewGeneration()
	gen.Set("facebook", &models.PlatformContent{Text: "fb", ImagePrompt: "campus"})

	svc.Attach(context.Background(), gen, []string{"facebook"})
	require.Len(t, images.requests, 1)
	assert.Equal(t, openai.CreateImageSize512x512, images.requests[0].Size)
	assert.Zero(t, encoder.calls)
}

func TestAttach_NoPromptNoImage(t *testing.T) {
	images := &fakeImages{}
	svc := NewMediaService(mediaConfig(t), images, nil, nil, http.DefaultClient)

	gen := models.NewGeneration()
	gen.Set("facebook", &models.PlatformContent{Text: "fb"})
	gen.Set("instagram", models.NewFailure(models.ErrOutOfScope, "fuera"))

	assert.Nil(t, svc.Attach(context.Background(), gen, []string{"facebook", "instagram"}))
	assert.Empty(t, images.requests)
}

func TestAttach_ImageFailureDegrades(t *testing.T) {
	tests := []struct {
		name   string
		images func(srvURL string) ImageCreator
		body   []byte
	}{
		{"no backend", func(string) ImageCreator { return nil }, pngBytes},
		{"generation error", func(string) ImageCreator { return &fakeImages{err: errors.New("billing limit")} }, pngBytes},
		{"not an image", func(u string) ImageCreator { return &fakeImages{url: u + "/a.png"} }, []byte("<html>oops</html>")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := imageServer(t, tt.body)
			svc := NewMediaService(mediaConfig(t), tt.images(srv.URL), &fakeEncoder{}, nil, srv.Client())
			gen := sampleGeneration()

			assert.Nil(t, svc.Attach(context.Background(), gen, []string{"facebook", "tiktok"}))
			for _, p := range gen.Platforms() {
				c, _ := gen.Get(p)
				assert.Empty(t, c.MediaURL)
				assert.Empty(t, c.VideoPath)
			}
		})
	}
}

func TestAttach_VideoBackendMissing(t *testing.T) {
	srv := imageServer(t, pngBytes)
	svc := NewMediaService(mediaConfig(t), &fakeImages{url: srv.URL + "/a.png"}, nil, nil, srv.Client())
	gen := sampleGeneration()

	asset := svc.Attach(context.Background(), gen, []string{"facebook", "tiktok"})
	require.NotNil(t, asset)
	tt, _ := gen.Get("tiktok")
	assert.NotEmpty(t, tt.MediaURL)
	assert.Empty(t, tt.VideoPath)
}

func TestAttach_VideoEncoderFails(t *testing.T) {
	srv := imageServer(t, pngBytes)
	cfg := mediaConfig(t)
	svc := NewMediaService(cfg, &fakeImages{url: srv.URL + "/a.png"}, &fakeEncoder{err: errors.New("codec missing")}, nil, srv.Client())
	gen := sampleGeneration()

	svc.Attach(context.Background(), gen, []string{"tiktok"})
	tt, _ := gen.Get("tiktok")
	assert.Empty(t, tt.VideoPath)

	entries, _ := os.ReadDir(filepath.Join(cfg.StaticDir, "videos"))
	assert.Empty(t, entries)
}

func TestPublicImageURL(t *testing.T) {
	srv := imageServer(t, pngBytes)

	t.Run("r2", func(t *testing.T) {
		store := &fakeStore{}
		svc := NewMediaService(mediaConfig(t), &fakeImages{url: srv.URL + "/a.png"}, nil, store, srv.Client())
		local, public := svc.DeriveMasterImage(context.Background(), "campus", openai.CreateImageSize512x512)
		require.NotEmpty(t, local)
		require.Len(t, store.keys, 1)
		assert.Equal(t, "media/"+filepath.Base(local), store.keys[0])
		assert.Equal(t, "https://media.example.com/media/"+filepath.Base(local), public)
	})

	t.Run("r2 failure falls back to public url", func(t *testing.T) {
		cfg := mediaConfig(t)
		cfg.PublicURL = "https://abc.ngrok.app/"
		svc := NewMediaService(cfg, &fakeImages{url: srv.URL + "/a.png"}, nil, &fakeStore{err: errors.New("denied")}, srv.Client())
		local, public := svc.DeriveMasterImage(context.Background(), "campus", openai.CreateImageSize512x512)
		assert.Equal(t, "https://abc.ngrok.app/static/media/"+filepath.Base(local), public)
	})
}

func TestLocalURL(t *testing.T) {
	cfg := mediaConfig(t)
	svc := NewMediaService(cfg, nil, nil, nil, http.DefaultClient)

	assert.Equal(t, "", svc.LocalURL(""))
	assert.Equal(t, "http://127.0.0.1:8080/static/media/a.png", svc.LocalURL(filepath.Join(cfg.StaticDir, "media", "a.png")))
	assert.Equal(t, "http://127.0.0.1:8080/static/videos/a.mp4", svc.LocalURL(filepath.Join(cfg.StaticDir, "videos", "a.mp4")))
}

func TestDeriveMasterImage_SizeLimit(t *testing.T) {
	srv := imageServer(t, pngBytes)
	svc := NewMediaService(mediaConfig(t), &fakeImages{url: srv.URL + "/a.png"}, nil, nil, srv.Client())

	svc.maxImage = int64(len(pngBytes)) - 1
	local, public := svc.DeriveMasterImage(context.Background(), "campus", openai.CreateImageSize1024x1024)
	assert.Empty(t, local)
	assert.Empty(t, public)
	_, err := os.Stat(svc.MediaDir())
	assert.True(t, os.IsNotExist(err))

	svc.maxImage = int64(len(pngBytes))
	local, public = svc.DeriveMasterImage(context.Background(), "campus", openai.CreateImageSize1024x1024)
	assert.NotEmpty(t, local)
	assert.NotEmpty(t, public)
}

func TestDeriveVideo_WritesIntoVideoDir(t *testing.T) {
	cfg := mediaConfig(t)
	svc := NewMediaService(cfg, nil, &fakeEncoder{}, nil, http.DefaultClient)
	assert.Equal(t, filepath.Join(cfg.StaticDir, "videos"), svc.VideoDir())

	video := svc.DeriveVideo(context.Background(), filepath.Join(cfg.StaticDir, "media", "a.png"), 5)
	require.NotEmpty(t, video)
	assert.Equal(t, svc.VideoDir(), filepath.Dir(video))
}
