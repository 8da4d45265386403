package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	config "github.com/maheshrc27/postgen/configs"
	"github.com/maheshrc27/postgen/internal/api/middleware"
	"github.com/maheshrc27/postgen/internal/models"
	"github.com/maheshrc27/postgen/internal/transfer"
	"github.com/maheshrc27/postgen/pkg/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeContent struct {
	platforms []string
}

func (f *fakeContent) Generate(ctx context.Context, title, body string, platforms []string) *models.Generation {
	f.platforms = platforms
	gen := models.NewGeneration()
	for i := len(platforms) - 1; i >= 0; i-- {
		gen.Set(platforms[i], &models.PlatformContent{Text: "texto " + platforms[i], ImagePrompt: "campus", Tone: "Casual"})
	}
	return gen
}

type fakeAttacher struct {
	calls int
}

func (f *fakeAttacher) Attach(ctx context.Context, gen *models.Generation, requested []string) *models.MasterAsset {
	f.calls++
	for _, p := range gen.Platforms() {
		c, _ := gen.Get(p)
		c.MediaURL = "https://cdn.example.com/a.png"
	}
	return &models.MasterAsset{PublicURL: "https://cdn.example.com/a.png"}
}

type fakePublications struct {
	owner    *int64
	req      *transfer.PublishRequest
	resp     transfer.PublishResponse
	rows     map[int64]*models.Publication
	listedBy int64
	running  bool
}

func (f *fakePublications) Enqueue(ctx context.Context, ownerID *int64, req *transfer.PublishRequest) transfer.PublishResponse {
	f.owner = ownerID
	f.req = req
	return f.resp
}

func (f *fakePublications) List(ctx context.Context, ownerID int64) ([]*models.Publication, error) {
	f.listedBy = ownerID
	out := []*models.Publication{}
	for _, p := range f.rows {
		out = append(out, p)
	}
	return out, nil
}

func (f *fakePublications) Get(ctx context.Context, id int64) (*models.Publication, error) {
	return f.rows[id], nil
}

func (f *fakePublications) QueueStatus(ctx context.Context) (*transfer.QueueStatus, error) {
	return &transfer.QueueStatus{Running: f.running, PendingCount: 3}, nil
}

func (f *fakePublications) SetRunning(ctx context.Context, running bool) (*transfer.QueueStatus, error) {
	f.running = running
	return f.QueueStatus(ctx)
}

const testSecret = "test-secret"

func newTestApp(content *fakeContent, attacher *fakeAttacher, pubs *fakePublications) *fiber.App {
	app := fiber.New()
	auth := middleware.NewAuthMiddleware(config.Config{SecretKey: testSecret, CookieName: "postgen_session"})

	health := NewHealthHandler([]string{"facebook"})
	app.Get("/", health.Root)
	app.Get("/health", health.Health)

	api := app.Group("/api")
	api.Use(auth.OptionalAuth())

	contentHandler := NewContentHandler(content, attacher)
	api.Post("/generate", contentHandler.Generate)

	publication := NewPublicationHandler(pubs)
	api.Post("/publish", publication.Publish)
	api.Get("/publications", publication.ListPublications)
	api.Get("/publications/:id", publication.GetPublication)
	api.Get("/queue/status", publication.QueueStatus)
	api.Post("/queue/status", publication.UpdateQueue)
	return app
}

func doJSON(t *testing.T, app *fiber.App, method, path, body string, headers ...string) (*http.Response, []byte) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, data
}

func TestGenerate(t *testing.T) {
	content, attacher := &fakeContent{}, &fakeAttacher{}
	app := newTestApp(content, attacher, &fakePublications{})

	resp, body := doJSON(t, app, http.MethodPost, "/api/generate",
		`{"title":"150 Aniversario","body":"La universidad celebra...","platforms":["Facebook","instagram","facebook"]}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	assert.Equal(t, []string{"facebook", "instagram"}, content.platforms)
	assert.Equal(t, 1, attacher.calls)
	// order of the generation is preserved in the response
	assert.Less(t, strings.Index(string(body), "instagram"), strings.Index(string(body), "facebook"))

	var out map[string]map[string]any
	require.NoError(t, json.Unmarshal(body, &out))
	assert.Equal(t, "https://cdn.example.com/a.png", out["facebook"]["media_url"])
	assert.Equal(t, "https://cdn.example.com/a.png", out["instagram"]["media_url"])
}

func TestGenerate_DefaultAndEmptyPlatforms(t *testing.T) {
	content := &fakeContent{}
	app := newTestApp(content, &fakeAttacher{}, &fakePublications{})

	resp, _ := doJSON(t, app, http.MethodPost, "/api/generate", `{"title":"Curso","body":"Nuevo curso"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, models.DefaultPlatforms, content.platforms)

	resp, _ = doJSON(t, app, http.MethodPost, "/api/generate", `{"title":"Curso","body":"Nuevo curso","platforms":[]}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = doJSON(t, app, http.MethodPost, "/api/generate", `{"title":`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestPublish_AlwaysOK(t *testing.T) {
	pubs := &fakePublications{resp: transfer.PublishResponse{
		Success:   false,
		Message:   "Facebook credentials not configured.",
		Status:    models.PublicationStatusFailed,
		ErrorKind: models.ErrConfig,
	}}
	app := newTestApp(&fakeContent{}, &fakeAttacher{}, pubs)

	resp, body := doJSON(t, app, http.MethodPost, "/api/publish",
		`{"platform":"facebook","text":"hola","media_url":"https://cdn.example.com/a.png"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"success":false,"message":"Facebook credentials not configured.","status":"failed","error_kind":"CONFIG_ERROR"}`, string(body))
	assert.Equal(t, "https://cdn.example.com/a.png", pubs.req.MediaURL)
	assert.Nil(t, pubs.owner)

	resp, body = doJSON(t, app, http.MethodPost, "/api/publish", `not json`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `"error_kind":"VALIDATION_ERROR"`)
}

func TestPublish_WithOwnerToken(t *testing.T) {
	pubs := &fakePublications{resp: transfer.PublishResponse{Success: true, Message: "queued", PublicationID: 5, Status: models.PublicationStatusPending}}
	app := newTestApp(&fakeContent{}, &fakeAttacher{}, pubs)

	token, err := utils.GenerateToken(testSecret, "42", time.Hour)
	require.NoError(t, err)

	resp, body := doJSON(t, app, http.MethodPost, "/api/publish", `{"platform":"linkedin","text":"hola"}`, "Authorization", "Bearer "+token)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"success":true,"message":"queued","publication_id":5,"status":"pending"}`, string(body))
	require.NotNil(t, pubs.owner)
	assert.EqualValues(t, 42, *pubs.owner)
}

func TestInvalidTokenRejected(t *testing.T) {
	app := newTestApp(&fakeContent{}, &fakeAttacher{}, &fakePublications{})

	resp, _ := doJSON(t, app, http.MethodGet, "/api/publications", "", "Authorization", "Bearer garbage")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, _ = doJSON(t, app, http.MethodGet, "/api/publications", "", "Cookie", "postgen_session=garbage")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestPublications(t *testing.T) {
	owner, other := int64(42), int64(7)
	pubs := &fakePublications{rows: map[int64]*models.Publication{
		1: {ID: 1, OwnerID: &owner, Platform: "facebook", Status: models.PublicationStatusPublished},
		2: {ID: 2, OwnerID: &other, Platform: "linkedin", Status: models.PublicationStatusPending},
	}}
	app := newTestApp(&fakeContent{}, &fakeAttacher{}, pubs)
	token, err := utils.GenerateToken(testSecret, "42", time.Hour)
	require.NoError(t, err)

	resp, _ := doJSON(t, app, http.MethodGet, "/api/publications", "", "Authorization", "Bearer "+token)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.EqualValues(t, 42, pubs.listedBy)

	resp, body := doJSON(t, app, http.MethodGet, "/api/publications/1", "", "Authorization", "Bearer "+token)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `"platform":"facebook"`)

	resp, _ = doJSON(t, app, http.MethodGet, "/api/publications/2", "", "Authorization", "Bearer "+token)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	// owned rows are hidden from anonymous callers
	resp, _ = doJSON(t, app, http.MethodGet, "/api/publications/1", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = doJSON(t, app, http.MethodGet, "/api/publications", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.EqualValues(t, 0, pubs.listedBy)

	resp, _ = doJSON(t, app, http.MethodGet, "/api/publications/99", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = doJSON(t, app, http.MethodGet, "/api/publications/abc", "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestQueueStatus(t *testing.T) {
	pubs := &fakePublications{running: true}
	app := newTestApp(&fakeContent{}, &fakeAttacher{}, pubs)

	resp, body := doJSON(t, app, http.MethodGet, "/api/queue/status", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"running":true,"pending_count":3}`, string(body))

	resp, body = doJSON(t, app, http.MethodPost, "/api/queue/status", `{"running":false}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"running":false,"pending_count":3}`, string(body))
	assert.False(t, pubs.running)

	resp, _ = doJSON(t, app, http.MethodPost, "/api/queue/status", `{}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHealth(t *testing.T) {
	app := newTestApp(&fakeContent{}, &fakeAttacher{}, &fakePublications{})

	resp, body := doJSON(t, app, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `"status":"healthy"`)

	resp, _ = doJSON(t, app, http.MethodGet, "/", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
