// utils/email.go
package utils

import (
	"fmt"
	"html"

	"farm-market/models"

	"github.com/keighl/postmark"
)

// EmailService handles sending emails using Postmark
type EmailService struct {
	client *postmark.Client
	sender string
}

// NewEmailService returns an EmailService, or nil when no API token is configured.
func NewEmailService(apiToken, sender string) *EmailService {
	if apiToken == "" {
		return nil
	}
	return &EmailService{
		client: postmark.NewClient(apiToken, ""),
		sender: sender,
	}
}

// SendEmail sends a basic email to the specified recipient
func (es *EmailService) SendEmail(toEmail, subject, htmlContent string) error {
	_, err := es.client.SendEmail(postmark.Email{
		From:     es.sender,
		To:       toEmail,
		Subject:  subject,
		HtmlBody: htmlContent,
		TextBody: htmlContent,
	})
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

// SendWelcome greets a newly registered identity. Identities registered with
// a phone number only are skipped.
func (es *EmailService) SendWelcome(identity *models.Identity) error {
	if identity.Email == "" {
		return nil
	}
	greeting := identity.FirstName
	if identity.Role == models.RoleFarmer {
		greeting = identity.BusinessName
	}
	if greeting == "" {
		greeting = "there"
	}
	subject := "Welcome to the market"
	body := fmt.Sprintf("<strong>Hi %s,</strong><br><br>Your %s account is ready. You can now sign in with your email or phone number.", html.EscapeString(greeting), identity.Role)
	return es.SendEmail(identity.Email, subject, body)
}
