package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// PlatformContent is either generated copy for one platform or the reason it could not be produced.
type PlatformContent struct {
	Text            string
	ImagePrompt     string
	Hashtags        []string
	Script          string
	Tone            string
	MediaURL        string
	DisplayURL      string
	VideoPath       string
	DisplayVideoURL string

	ErrorKind ErrorKind
	Message   string
}

func NewFailure(kind ErrorKind, message string) *PlatformContent {
	return &PlatformContent{ErrorKind: kind, Message: message}
}

func (c *PlatformContent) Failed() bool {
	return c.ErrorKind != ""
}

type contentFailure struct {
	ErrorKind ErrorKind `json:"error_kind"`
	Message   string    `json:"message"`
}

type contentSuccess struct {
	Text            string   `json:"text"`
	ImagePrompt     string   `json:"image_prompt,omitempty"`
	Hashtags        []string `json:"hashtags"`
	Script          string   `json:"script,omitempty"`
	Tone            string   `json:"tone"`
	MediaURL        string   `json:"media_url,omitempty"`
	DisplayURL      string   `json:"display_url,omitempty"`
	VideoPath       string   `json:"video_path,omitempty"`
	DisplayVideoURL string   `json:"display_video_url,omitempty"`
}

func (c PlatformContent) MarshalJSON() ([]byte, error) {
	if c.Failed() {
		return json.Marshal(contentFailure{ErrorKind: c.ErrorKind, Message: c.Message})
	}
	hashtags := c.Hashtags
	if hashtags == nil {
		hashtags = []string{}
	}
	return json.Marshal(contentSuccess{
		Text:            c.Text,
		ImagePrompt:     c.ImagePrompt,
		Hashtags:        hashtags,
		Script:          c.Script,
		Tone:            c.Tone,
		MediaURL:        c.MediaURL,
		DisplayURL:      c.DisplayURL,
		VideoPath:       c.VideoPath,
		DisplayVideoURL: c.DisplayVideoURL,
	})
}

// UnmarshalJSON reads the per-platform object returned by the language model.
// Hashtags are accepted either as a list or as one whitespace separated string.
func (c *PlatformContent) UnmarshalJSON(data []byte) error {
	var raw struct {
		Text        string          `json:"text"`
		ImagePrompt string          `json:"image_prompt"`
		Hashtags    json.RawMessage `json:"hashtags"`
		Script      string          `json:"script"`
		Tone        string          `json:"tone"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*c = PlatformContent{
		Text:        raw.Text,
		ImagePrompt: raw.ImagePrompt,
		Script:      raw.Script,
		Tone:        raw.Tone,
	}

	if len(raw.Hashtags) == 0 || string(raw.Hashtags) == "null" {
		return nil
	}
	if err := json.Unmarshal(raw.Hashtags, &c.Hashtags); err == nil {
		return nil
	}
	var joined string
	if err := json.Unmarshal(raw.Hashtags, &joined); err != nil {
		return fmt.Errorf("hashtags: %w", err)
	}
	c.Hashtags = strings.Fields(joined)
	return nil
}

// Generation maps platforms to content and remembers insertion order.
type Generation struct {
	order []string
	items map[string]*PlatformContent
}

func NewGeneration() *Generation {
	return &Generation{items: make(map[string]*PlatformContent)}
}

// FailAll builds a generation where every platform carries the same failure.
func FailAll(platforms []string, kind ErrorKind, message string) *Generation {
	g := NewGeneration()
	for _, p := range platforms {
		g.Set(p, NewFailure(kind, message))
	}
	return g
}

func (g *Generation) Set(platform string, content *PlatformContent) {
	if _, ok := g.items[platform]; !ok {
		g.order = append(g.order, platform)
	}
	g.items[platform] = content
}

func (g *Generation) Get(platform string) (*PlatformContent, bool) {
	c, ok := g.items[platform]
	return c, ok
}

func (g *Generation) Platforms() []string {
	out := make([]string, len(g.order))
	copy(out, g.order)
	return out
}

func (g *Generation) Len() int {
	return len(g.order)
}

func (g *Generation) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, platform := range g.order {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(platform)
		if err != nil {
			return nil, err
		}
		value, err := json.Marshal(g.items[platform])
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// ParseGeneration decodes a JSON object of platform objects keeping the key order of the document.
func ParseGeneration(data []byte) (*Generation, error) {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, errors.New("generation response is not a JSON object")
	}

	g := NewGeneration()
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, errors.New("generation response has a non-string key")
		}

		var content PlatformContent
		if err := dec.Decode(&content); err != nil {
			return nil, fmt.Errorf("platform %q: %w", key, err)
		}
		g.Set(strings.ToLower(strings.TrimSpace(key)), &content)
	}

	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	if dec.More() {
		return nil, errors.New("unexpected data after generation object")
	}
	return g, nil
}

// MasterAsset is the single image (and optional video) derived for one generation request.
type MasterAsset struct {
	LocalPath string
	PublicURL string
	VideoPath string
}
