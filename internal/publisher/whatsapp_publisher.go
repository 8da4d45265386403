package publisher

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	config "github.com/maheshrc27/postgen/configs"
	"github.com/maheshrc27/postgen/internal/models"
	"github.com/maheshrc27/postgen/internal/transfer"
)

const whatsappGraphVersion = "v22.0"

type whatsappPublisher struct {
	apiToken  string
	phoneID   string
	recipient string
	baseURL   string
	client    *http.Client
}

func NewWhatsAppPublisher(cfg config.WhatsApp, client *http.Client) Publisher {
	return &whatsappPublisher{
		apiToken:  cfg.APIToken,
		phoneID:   cfg.PhoneID,
		recipient: cfg.RecipientPhone,
		baseURL:   fmt.Sprintf("%s/%s", graphBaseURL, whatsappGraphVersion),
		client:    client,
	}
}

func (p *whatsappPublisher) Check(media Media) *Result {
	if p.apiToken == "" || p.phoneID == "" || p.recipient == "" {
		return failure(models.ErrConfig, "WhatsApp credentials not configured.")
	}
	return nil
}

// Publish sends the image first, when there is one, and then the text.
// Both messages have to be accepted.
func (p *whatsappPublisher) Publish(ctx context.Context, text string, media Media) Result {
	if r := p.Check(media); r != nil {
		return *r
	}

	var sent []string

	if media.Kind == MediaImageURL {
		id, r := p.send(ctx, transfer.WhatsAppMessage{
			MessagingProduct: "whatsapp",
			To:               p.recipient,
			Type:             "image",
			Image:            &transfer.WhatsAppImage{Link: media.Ref},
		})
		if r != nil {
			return *r
		}
		sent = append(sent, "image:"+id)
	}

	id, r := p.send(ctx, transfer.WhatsAppMessage{
		MessagingProduct: "whatsapp",
		To:               p.recipient,
		Type:             "text",
		Text:             &transfer.WhatsAppText{Body: text},
	})
	if r != nil {
		return *r
	}
	sent = append(sent, "text:"+id)

	return Published(id, "Sent to WhatsApp ("+strings.Join(sent, ", ")+")")
}

func (p *whatsappPublisher) send(ctx context.Context, msg transfer.WhatsAppMessage) (string, *Result) {
	payload, err := json.Marshal(msg)
	if err != nil {
		return "", failure(models.ErrException, err.Error())
	}

	endpoint := fmt.Sprintf("%s/%s/messages", p.baseURL, p.phoneID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", failure(models.ErrException, err.Error())
	}
	req.Header.Set("Authorization", "Bearer "+p.apiToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		r := transportFailure(err)
		return "", &r
	}
	defer resp.Body.Close()

	var result transfer.WhatsAppResponse
	decodeErr := json.NewDecoder(resp.Body).Decode(&result)

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		msg := fmt.Sprintf("WhatsApp returned status %d", resp.StatusCode)
		if decodeErr == nil && result.Error != nil && result.Error.Message != "" {
			msg = result.Error.Message
		}
		return "", failure(models.ErrAPI, msg)
	}
	if decodeErr != nil {
		return "", failure(models.ErrException, fmt.Sprintf("invalid WhatsApp response: %v", decodeErr))
	}

	var id string
	if len(result.Messages) > 0 {
		id = result.Messages[0].ID
	}
	return id, nil
}
