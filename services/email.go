package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/ksm007/spliteasy-updated/models"
)

type EmailService struct {
	apiKey     string
	fromEmail  string
	httpClient *http.Client
}

func NewEmailService(apiKey, fromEmail string) *EmailService {
	return &EmailService{
		apiKey:     apiKey,
		fromEmail:  fromEmail,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

type sendEmailRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
}

// SendBreakdown emails one participant their share of a split.
func (s *EmailService) SendBreakdown(to, receiptName string, row models.BreakdownRow) error {
	if s.apiKey == "" {
		return fmt.Errorf("RESEND_API_KEY not configured")
	}

	if receiptName == "" {
		receiptName = "a shared bill"
	}

	htmlBody := fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head>
    <style>
        body { font-family: sans-serif; }
        .container { max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { background: #667eea; color: white; padding: 30px; border-radius: 10px 10px 0 0; }
        .content { background: #f8f9fa; padding: 30px; }
        table { width: 100%%; border-collapse: collapse; }
        td { padding: 6px 0; }
        .amount { text-align: right; }
        .total td { font-weight: bold; border-top: 1px solid #ccc; }
    </style>
</head>
<body>
    <div class="container">
        <div class="header">
            <h1>Your share of %s</h1>
        </div>
        <div class="content">
            <p>Hi %s,</p>
            <p>Here is what you owe for <strong>%s</strong>:</p>
            <table>
                <tr><td>Items</td><td class="amount">$%.2f</td></tr>
                <tr><td>Tax share</td><td class="amount">$%.2f</td></tr>
                <tr><td>Tip share</td><td class="amount">$%.2f</td></tr>
                <tr class="total"><td>Total</td><td class="amount">$%.2f</td></tr>
            </table>
        </div>
    </div>
</body>
</html>`, receiptName, row.ParticipantName, receiptName,
		row.ItemsTotal, row.TaxShare, row.TipShare, row.Total)

	payload := sendEmailRequest{
		From:    s.fromEmail,
		To:      []string{to},
		Subject: fmt.Sprintf("Your share of %s", receiptName),
		HTML:    htmlBody,
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal email request: %w", err)
	}

	req, err := http.NewRequest("POST", "https://api.resend.com/emails", bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create email request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("email request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("email API returned status %d", resp.StatusCode)
	}
	return nil
}
