package services

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"log"
	"strings"

	"pqr_flow_app_go/config"
	"pqr_flow_app_go/services/i18n"

	"github.com/resend/resend-go/v2"
)

// Email represents an email message
type Email struct {
	To       []string
	Subject  string
	HTMLBody string
	TextBody string
}

var recoveryEmailTemplate = template.Must(template.New("recovery").Parse(`<!DOCTYPE html>
<html><body style="font-family: Arial, sans-serif; color: #1f2937;">
<h2 style="color: #1e3a8a;">{{.Office}}</h2>
<p>{{.Body}}</p>
<p><a href="{{.Link}}" style="background: #1e3a8a; color: #ffffff; padding: 10px 16px; text-decoration: none; border-radius: 4px;">{{.Link}}</a></p>
</body></html>`))

// BuildRecoveryEmail creates the password recovery message for a recovery address
func BuildRecoveryEmail(ctx context.Context, to, office, link string) (*Email, error) {
	body := i18n.T(ctx, "email.recovery_body", i18n.Vars{"link": link})

	var buf bytes.Buffer
	err := recoveryEmailTemplate.Execute(&buf, map[string]string{
		"Office": office,
		"Body":   body,
		"Link":   link,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to render recovery email: %w", err)
	}

	return &Email{
		To:       []string{to},
		Subject:  i18n.T(ctx, "email.recovery_subject", i18n.Vars{"office": office}),
		HTMLBody: buf.String(),
		TextBody: body,
	}, nil
}

// RecoveryLink builds the front-end link that carries a recovery token
func RecoveryLink(appURL, token string) string {
	return strings.TrimSuffix(appURL, "/") + "/reset-password?token=" + token
}

// SendEmail sends an email using Resend API
func SendEmail(cfg *config.Config, email *Email) error {
	// In development mode, log the email instead of sending
	if cfg.EmailTestMode {
		logEmailToConsole(email)
		return nil
	}

	if cfg.ResendAPIKey == "" {
		return fmt.Errorf("RESEND_API_KEY not configured")
	}

	client := resend.NewClient(cfg.ResendAPIKey)

	params := &resend.SendEmailRequest{
		From:    fmt.Sprintf("%s <%s>", cfg.EmailFromName, cfg.EmailFrom),
		To:      email.To,
		Subject: email.Subject,
		Html:    email.HTMLBody,
		Text:    email.TextBody,
	}

	if params.Html == "" && params.Text == "" {
		return fmt.Errorf("email must have either HTMLBody or TextBody")
	}

	sent, err := client.Emails.Send(params)
	if err != nil {
		return fmt.Errorf("failed to send email via Resend: %w", err)
	}

	log.Printf("[EMAIL] sent via Resend (ID: %s) to: %v", sent.Id, email.To)
	return nil
}

// logEmailToConsole logs email details to console in development mode
func logEmailToConsole(email *Email) {
	separator := strings.Repeat("=", 80)
	log.Printf("\n%s\nEMAIL (test mode, not sent)\n%s", separator, separator)
	log.Printf("To: %v", email.To)
	log.Printf("Subject: %s", email.Subject)
	log.Printf("\n--- TEXT BODY ---\n%s", email.TextBody)
	log.Printf("\n--- HTML BODY (first 500 chars) ---\n%s...", truncate(email.HTMLBody, 500))
	log.Printf("%s\n", separator)
}

// truncate truncates a string to a maximum length
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen]
}

// SendEmailAsync sends an email from a goroutine so handlers do not block on the provider
func SendEmailAsync(cfg *config.Config, email *Email) {
	emailCopy := &Email{
		To:       append([]string{}, email.To...),
		Subject:  email.Subject,
		HTMLBody: email.HTMLBody,
		TextBody: email.TextBody,
	}

	go func(cfg *config.Config, email *Email) {
		if err := SendEmail(cfg, email); err != nil {
			log.Printf("[EMAIL] error sending async email: %v", err)
		}
	}(cfg, emailCopy)
}
