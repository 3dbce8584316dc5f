package gemini

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
)

type Client struct {
	baseURL      string
	apiKey       string
	model        string
	templatesDir string
	httpClient   *http.Client
}

type inlineData struct {
	MimeType string `json:"mime_type"`
	Data     string `json:"data"`
}

type requestPart struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inline_data,omitempty"`
}

type requestContent struct {
	Parts []requestPart `json:"parts"`
}

type generateRequest struct {
	Contents []requestContent `json:"contents"`
}

type responsePart struct {
	Text       string `json:"text,omitempty"`
	InlineData *struct {
		MimeType string `json:"mimeType"`
		Data     string `json:"data"`
	} `json:"inlineData,omitempty"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []responsePart `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

func NewClient(baseURL, apiKey, model, templatesDir string) *Client {
	return &Client{
		baseURL:      baseURL,
		apiKey:       apiKey,
		model:        model,
		templatesDir: templatesDir,
		httpClient: &http.Client{
			// Image generation is slow; a single month can take minutes.
			Timeout: 5 * time.Minute,
		},
	}
}

// GenerateMonth produces one calendar image for the given month from the
// partner's reference photo and the month's template. There is no retry here:
// a failure surfaces to the operator, who re-triggers the cycle manually.
func (c *Client) GenerateMonth(partnerImage []byte, month string) ([]byte, error) {
	crop, ok := CropBoxes[month]
	if !ok {
		return nil, fmt.Errorf("unknown month %q", month)
	}

	templatePath := filepath.Join(c.templatesDir, TemplateFiles[month])
	templateImage, err := os.ReadFile(templatePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read template for %s: %w", month, err)
	}

	reqBody := generateRequest{
		Contents: []requestContent{{
			Parts: []requestPart{
				{Text: monthInstruction(crop)},
				{InlineData: &inlineData{
					MimeType: "image/jpeg",
					Data:     base64.StdEncoding.EncodeToString(templateImage),
				}},
				{InlineData: &inlineData{
					MimeType: "image/jpeg",
					Data:     base64.StdEncoding.EncodeToString(partnerImage),
				}},
			},
		}},
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := strings.TrimSuffix(c.baseURL, "/") + "/" + c.model + ":generateContent"
	req, err := http.NewRequest("POST", url, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("x-goog-api-key", c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("failed to generate %s: status %d, body: %s", month, resp.StatusCode, string(body))
	}

	var result generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	for _, candidate := range result.Candidates {
		for _, part := range candidate.Content.Parts {
			if part.InlineData == nil {
				continue
			}
			data, err := base64.StdEncoding.DecodeString(part.InlineData.Data)
			if err != nil {
				return nil, fmt.Errorf("failed to decode image data for %s: %w", month, err)
			}
			return data, nil
		}
	}

	return nil, fmt.Errorf("no image returned for %s", month)
}

func monthInstruction(crop CropBox) string {
	return fmt.Sprintf(`Replace only the person located inside this rectangle:
Top-left: (%d, %d)
Bottom-right: (%d, %d)

Make the person resemble the partner in the reference photo.
Keep pose, body position, skin tone, clothing style, and illustration style consistent.

Do not change calendar layout, dates, text, background, colors, or framing.`,
		crop.Left, crop.Top, crop.Right, crop.Bottom)
}
