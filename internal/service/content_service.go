package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/maheshrc27/postgen/internal/models"
	"github.com/sashabaranov/go-openai"
)

const systemPrompt = "Eres el community manager de una universidad. " +
	"Genera contenido específico para cada plataforma a partir del texto recibido. " +
	"Escribe siempre en ESPAÑOL y niégate a producir contenido ajeno al ámbito académico o universitario. " +
	"Responde con un único objeto JSON cuyas claves son los nombres de las plataformas en minúsculas. " +
	"Cada valor es un objeto con: " +
	"'text' (texto de la publicación), " +
	"'image_prompt' (descripción detallada para generar una imagen), " +
	"'hashtags' (lista de hashtags relevantes), " +
	"'script' (solo para TikTok, guion de un video de 15 a 30 segundos) y " +
	"'tone' (tono empleado, por ejemplo Profesional, Casual o Emocionante). " +
	"No incluyas nada fuera del JSON."

// ChatCompleter is the part of the OpenAI client the generator depends on.
type ChatCompleter interface {
	CreateChatCompletion(ctx context.Context, request openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

type ContentService interface {
	Generate(ctx context.Context, title, body string, platforms []string) *models.Generation
}

type contentService struct {
	llm   ChatCompleter
	model string
}

// NewContentService takes a nil llm when no API key is configured.
func NewContentService(llm ChatCompleter, model string) ContentService {
	return &contentService{
		llm:   llm,
		model: model,
	}
}

func (s *contentService) Generate(ctx context.Context, title, body string, platforms []string) *models.Generation {
	if !AdmitScope(title + "\n\n" + body) {
		return models.FailAll(platforms, models.ErrOutOfScope, outOfScopeMessage)
	}

	if s.llm == nil {
		return models.FailAll(platforms, models.ErrConfig, "OpenAI API Key not configured.")
	}

	userPrompt := fmt.Sprintf("Title: %s\nBody: %s\n\nTarget Platforms: %s\n\nGenerate the content now.",
		title, body, strings.Join(platforms, ", "))

	resp, err := s.llm.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: s.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userPrompt},
		},
		Temperature: 0.7,
	})
	if err != nil {
		slog.Error("content generation failed", "error", err)
		return models.FailAll(platforms, models.ErrGenerationFailed, err.Error())
	}
	if len(resp.Choices) == 0 {
		return models.FailAll(platforms, models.ErrGenerationFailed, "language model returned no choices")
	}

	parsed, err := models.ParseGeneration([]byte(stripCodeFence(resp.Choices[0].Message.Content)))
	if err != nil {
		slog.Error("content generation returned invalid JSON", "error", err)
		return models.FailAll(platforms, models.ErrGenerationFailed, err.Error())
	}

	return reconcile(parsed, platforms)
}

// reconcile keeps exactly the requested platforms, in response order, and fills the gaps with failures.
func reconcile(parsed *models.Generation, platforms []string) *models.Generation {
	requested := make(map[string]bool, len(platforms))
	for _, p := range platforms {
		requested[p] = true
	}

	out := models.NewGeneration()
	for _, p := range parsed.Platforms() {
		if !requested[p] {
			continue
		}
		content, _ := parsed.Get(p)
		if p != models.ShortVideoPlatform {
			content.Script = ""
		}
		out.Set(p, content)
	}

	for _, p := range platforms {
		if _, ok := out.Get(p); !ok {
			out.Set(p, models.NewFailure(models.ErrGenerationFailed, fmt.Sprintf("No content generated for %s.", p)))
		}
	}
	return out
}

func stripCodeFence(s string) string {
	for _, fence := range []string{"```json", "```"} {
		if _, after, ok := strings.Cut(s, fence); ok {
			inner, _, _ := strings.Cut(after, "```")
			return strings.TrimSpace(inner)
		}
	}
	return strings.TrimSpace(s)
}

var ErrNoPlatforms = errors.New("at least one platform is required")

// NormalizePlatforms lowercases and de-duplicates the requested platforms.
// A nil list selects the default platforms.
func NormalizePlatforms(in []string) ([]string, error) {
	if in == nil {
		out := make([]string, len(models.DefaultPlatforms))
		copy(out, models.DefaultPlatforms)
		return out, nil
	}

	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, p := range in {
		p = strings.ToLower(strings.TrimSpace(p))
		if p == "" || seen[p] {
			continue
		}
		seen[p] = true
		out = append(out, p)
	}
	if len(out) == 0 {
		return nil, ErrNoPlatforms
	}
	return out, nil
}
