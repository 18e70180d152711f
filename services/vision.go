package services

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"google.golang.org/genai"

	"github.com/ksm007/spliteasy-updated/models"
)

const receiptPrompt = `You are a highly accurate receipt parser. Given the image of a retail or restaurant receipt,
extract every line-item and the subtotal, tax, tip, and total. Return ONLY valid JSON with this schema:

{
  "items": [
    { "description": string, "quantity": number, "price": number }
  ],
  "subtotal": number,
  "tax": number,
  "tip": number,
  "total": number
}

For line items, extract the item description, quantity (default to 1 if not specified), and price.
If the receipt is unclear or you cannot identify certain values:
- For missing line items, provide an empty array
- For missing subtotal, tax, or tip, use 0
- For missing total, calculate from available values or use 0
Do NOT wrap the response in code fences.`

// VisionService extracts receipt data from photos with Gemini.
type VisionService struct {
	model string
}

func NewVisionService() *VisionService {
	return &VisionService{model: "gemini-2.0-flash"}
}

// ParseReceipt sends the image to the model and returns a sanitized
// ParsedReceipt. Items come back with no assignments and IsMultiplied false;
// all numeric fields are coerced to finite values here so downstream code
// never sees NaN or missing numbers.
func (s *VisionService) ParseReceipt(ctx context.Context, image []byte, mimeType string) (*models.ParsedReceipt, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		HTTPOptions: genai.HTTPOptions{APIVersion: "v1"},
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	contents := []*genai.Content{
		{
			Role: "user",
			Parts: []*genai.Part{
				{Text: receiptPrompt},
				{
					InlineData: &genai.Blob{
						MIMEType: mimeType,
						Data:     image,
					},
				},
			},
		},
	}

	resp, err := client.Models.GenerateContent(ctx, s.model, contents, nil)
	if err != nil {
		return nil, fmt.Errorf("generate content: %w", err)
	}

	rawText := resp.Text()
	if rawText == "" {
		return nil, fmt.Errorf("empty response from model")
	}

	var raw rawParsedReceipt
	if err := json.Unmarshal([]byte(CleanModelJSON(rawText)), &raw); err != nil {
		return nil, fmt.Errorf("invalid JSON from model: %w", err)
	}

	return SanitizeParsedReceipt(raw), nil
}

// rawParsedReceipt mirrors the model's schema with optional fields, before
// coercion.
type rawParsedReceipt struct {
	Items []struct {
		Description string   `json:"description"`
		Quantity    *float64 `json:"quantity"`
		Price       *float64 `json:"price"`
	} `json:"items"`
	Subtotal *float64 `json:"subtotal"`
	Tax      *float64 `json:"tax"`
	Tip      *float64 `json:"tip"`
	Total    *float64 `json:"total"`
}

// SanitizeParsedReceipt coerces missing and non-finite values once, at the
// boundary where parser output enters the system.
func SanitizeParsedReceipt(raw rawParsedReceipt) *models.ParsedReceipt {
	parsed := &models.ParsedReceipt{
		Items:    make([]models.ReceiptItem, 0, len(raw.Items)),
		Subtotal: coerceNumber(raw.Subtotal, 0),
		Tax:      coerceNumber(raw.Tax, 0),
		Tip:      coerceNumber(raw.Tip, 0),
		Total:    coerceNumber(raw.Total, 0),
	}

	for _, item := range raw.Items {
		description := strings.TrimSpace(item.Description)
		if description == "" {
			description = "Unknown item"
		}
		parsed.Items = append(parsed.Items, models.ReceiptItem{
			Description: description,
			Quantity:    coerceNumber(item.Quantity, 1),
			Price:       coerceNumber(item.Price, 0),
			Assignments: []models.ItemAssignment{},
		})
	}

	return parsed
}

func coerceNumber(v *float64, fallback float64) float64 {
	if v == nil || math.IsNaN(*v) || math.IsInf(*v, 0) {
		return fallback
	}
	return *v
}

// CleanModelJSON strips markdown fences and surrounding junk the model
// sometimes emits despite instructions, keeping the outermost JSON object.
func CleanModelJSON(raw string) string {
	s := strings.TrimSpace(raw)

	if strings.HasPrefix(s, "```") {
		if idx := strings.Index(s, "\n"); idx != -1 {
			s = s[idx+1:]
		}
		if idx := strings.LastIndex(s, "```"); idx != -1 {
			s = s[:idx]
		}
		s = strings.TrimSpace(s)
	}

	if start := strings.Index(s, "{"); start != -1 {
		if end := strings.LastIndex(s, "}"); end > start {
			s = strings.TrimSpace(s[start : end+1])
		}
	}

	return s
}
