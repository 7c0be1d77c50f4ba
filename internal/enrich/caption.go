package enrich

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/your-org/photodisplay/internal/config"
)

// MaxCaptionLength is the hard cap on stored captions, matching the
// caption_ai column.
const MaxCaptionLength = 240

const captionPrompt = "Describe this photo in 240 characters or less."

// Captioner generates a short natural-language caption for an image.
type Captioner interface {
	Caption(ctx context.Context, image []byte, language string) (string, error)
}

// HTTPCaptioner delegates captioning to an external HTTP capability.
type HTTPCaptioner struct {
	endpoint string
	apiKey   string
	client   *http.Client
}

func NewHTTPCaptioner(cfg config.CaptionConfig) *HTTPCaptioner {
	return &HTTPCaptioner{
		endpoint: cfg.Endpoint,
		apiKey:   cfg.APIKey,
		client:   &http.Client{Timeout: cfg.Timeout},
	}
}

type captionRequest struct {
	Prompt   string `json:"prompt"`
	Image    string `json:"image"`
	Language string `json:"language"`
}

type captionResponse struct {
	Caption string `json:"caption"`
}

// Caption sends the image to the captioning endpoint and returns the text
// truncated to MaxCaptionLength. Truncation is part of the contract, not a
// failure path.
func (c *HTTPCaptioner) Caption(ctx context.Context, image []byte, language string) (string, error) {
	payload, err := json.Marshal(captionRequest{
		Prompt:   captionPrompt,
		Image:    base64.StdEncoding.EncodeToString(image),
		Language: language,
	})
	if err != nil {
		return "", fmt.Errorf("marshal caption request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("build caption request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("caption request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("caption service returned %d", resp.StatusCode)
	}

	var body captionResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("decode caption response: %w", err)
	}

	return TruncateCaption(body.Caption), nil
}

// TruncateCaption enforces the storage cap without splitting a rune.
func TruncateCaption(caption string) string {
	runes := []rune(caption)
	if len(runes) <= MaxCaptionLength {
		return caption
	}
	return string(runes[:MaxCaptionLength])
}
