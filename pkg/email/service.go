package email

import (
	"fmt"
	"log"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/nhfg/crm-backend/pkg/models"
)

// Service handles email sending
type Service struct {
	fromEmail   string
	fromName    string
	alertEmail  string
	sendGridKey string
	useSendGrid bool
}

// NewService creates a new email service
// If sendGridAPIKey is provided, emails will be sent via SendGrid
// Otherwise, emails will be logged to console (development mode)
func NewService(fromEmail, fromName, alertEmail, sendGridAPIKey string) *Service {
	useSendGrid := sendGridAPIKey != ""
	if useSendGrid {
		log.Printf("✅ Email service initialized with SendGrid")
	} else {
		log.Printf("⚠️  Email service in console-only mode (set SENDGRID_API_KEY for production)")
	}

	return &Service{
		fromEmail:   fromEmail,
		fromName:    fromName,
		alertEmail:  alertEmail,
		sendGridKey: sendGridAPIKey,
		useSendGrid: useSendGrid,
	}
}

// SendNewLeadAlert notifies the sales inbox about a freshly ingested lead.
func (s *Service) SendNewLeadAlert(lead *models.Lead) error {
	if s.alertEmail == "" {
		return nil
	}

	subject := fmt.Sprintf("New %s lead: %s", lead.Source, lead.Name)
	body := fmt.Sprintf(`
		<html>
		<body>
			<h2>New Lead Received</h2>
			<p>A new lead just arrived from <strong>%s</strong>.</p>
			<ul>
				<li><strong>Name:</strong> %s</li>
				<li><strong>Email:</strong> %s</li>
				<li><strong>Phone:</strong> %s</li>
				<li><strong>Interest:</strong> %s</li>
				<li><strong>Score:</strong> %d (%s)</li>
				<li><strong>Campaign:</strong> %s</li>
			</ul>
			<p>Follow up promptly while the lead is still hot.</p>
			<p>NHFG CRM</p>
		</body>
		</html>
	`, lead.Source, lead.Name, lead.Email, lead.Phone, lead.Interest, lead.Score, lead.Qualification, lead.Campaign)

	plainText := fmt.Sprintf(`
New lead received from %s.

Name:     %s
Email:    %s
Phone:    %s
Interest: %s
Score:    %d (%s)
Campaign: %s

Follow up promptly while the lead is still hot.

NHFG CRM
	`, lead.Source, lead.Name, lead.Email, lead.Phone, lead.Interest, lead.Score, lead.Qualification, lead.Campaign)

	if s.useSendGrid {
		return s.sendViaSendGrid(s.alertEmail, "Sales Team", subject, body, plainText)
	}

	return s.logEmailToConsole(s.alertEmail, "Sales Team", subject, lead.Name)
}

// SendReengagementAlert notifies the sales inbox that an existing lead
// submitted another ad form.
func (s *Service) SendReengagementAlert(lead *models.Lead, platform string) error {
	if s.alertEmail == "" {
		return nil
	}

	subject := fmt.Sprintf("Lead re-engaged via %s: %s", platform, lead.Name)
	body := fmt.Sprintf(`
		<html>
		<body>
			<h2>Lead Re-engagement</h2>
			<p><strong>%s</strong> submitted another form through <strong>%s</strong>.</p>
			<p>Current status: <strong>%s</strong></p>
			<p>This lead is showing renewed interest. Consider reaching out today.</p>
			<p>NHFG CRM</p>
		</body>
		</html>
	`, lead.Name, platform, lead.Status)

	plainText := fmt.Sprintf(`
%s submitted another form through %s.

Current status: %s

This lead is showing renewed interest. Consider reaching out today.

NHFG CRM
	`, lead.Name, platform, lead.Status)

	if s.useSendGrid {
		return s.sendViaSendGrid(s.alertEmail, "Sales Team", subject, body, plainText)
	}

	return s.logEmailToConsole(s.alertEmail, "Sales Team", subject, lead.Name)
}

// sendViaSendGrid sends email using SendGrid API
func (s *Service) sendViaSendGrid(toEmail, toName, subject, htmlBody, plainTextBody string) error {
	from := mail.NewEmail(s.fromName, s.fromEmail)
	to := mail.NewEmail(toName, toEmail)

	message := mail.NewSingleEmail(from, subject, to, plainTextBody, htmlBody)

	client := sendgrid.NewSendClient(s.sendGridKey)
	response, err := client.Send(message)

	if err != nil {
		log.Printf("❌ SendGrid error: %v", err)
		return fmt.Errorf("failed to send email: %w", err)
	}

	if response.StatusCode >= 400 {
		log.Printf("❌ SendGrid returned error status %d: %s", response.StatusCode, response.Body)
		return fmt.Errorf("sendgrid returned error status: %d", response.StatusCode)
	}

	log.Printf("✅ Email sent successfully to %s (SendGrid status: %d)", toEmail, response.StatusCode)
	return nil
}

// logEmailToConsole logs email details to console (development mode)
func (s *Service) logEmailToConsole(toEmail, toName, subject, detail string) error {
	log.Printf("📧 [EMAIL] %s", subject)
	log.Printf("   To: %s <%s>", toName, toEmail)
	log.Printf("   From: %s <%s>", s.fromName, s.fromEmail)
	log.Printf("   Re: %s", detail)
	log.Printf("   ⚠️  Email NOT sent (development mode)")
	return nil
}
