package email

import (
	"bytes"
	"fmt"
	"html/template"
	"time"

	"github.com/Montinou/stratixV2-sub007/config"

	mail "github.com/xhit/go-simple-mail/v2"
)

// EmailService sends transactional email through the Brevo SMTP relay
type EmailService struct {
	server    *mail.SMTPServer
	fromEmail string
	frontend  string
}

// InvitationEmailData holds the data for company invitation emails
type InvitationEmailData struct {
	CompanyName string
	InviterName string
	Role        string
	AcceptURL   string
	ExpiresAt   time.Time
}

// NewEmailService creates a new email service with Brevo SMTP configuration
func NewEmailService(cfg *config.Config) *EmailService {
	server := mail.NewSMTPClient()
	server.Host = cfg.SMTPHost
	server.Port = cfg.SMTPPort
	server.Username = cfg.SMTPUsername
	server.Password = cfg.SMTPPassword
	server.Encryption = mail.EncryptionSTARTTLS
	server.KeepAlive = false
	server.ConnectTimeout = 10 * time.Second
	server.SendTimeout = 10 * time.Second

	return &EmailService{
		server:    server,
		fromEmail: cfg.SMTPFromEmail,
		frontend:  cfg.FrontendURL,
	}
}

// invitationEmailTemplate is the HTML template for company invitations
const invitationEmailTemplate = `<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>Invitación a {{.CompanyName}}</title>
    <style>
        body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
        .container { max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { background: #1E3A5F; color: white; padding: 20px; text-align: center; }
        .content { padding: 20px; background: #f9f9f9; }
        .button { display: inline-block; background: #1E3A5F; color: white; padding: 12px 24px; text-decoration: none; border-radius: 4px; margin-top: 15px; }
        .footer { text-align: center; padding: 20px; color: #888; font-size: 12px; }
    </style>
</head>
<body>
    <div class="container">
        <div class="header">
            <h1>Te invitaron a {{.CompanyName}}</h1>
        </div>
        <div class="content">
            <p>{{.InviterName}} te invitó a unirte a <strong>{{.CompanyName}}</strong> en Stratix con el rol <strong>{{.Role}}</strong>.</p>
            <p>La invitación vence el {{.ExpiresAt.Format "02/01/2006 15:04"}}.</p>
            <a class="button" href="{{.AcceptURL}}">Aceptar invitación</a>
        </div>
        <div class="footer">
            <p>Si no esperabas este correo, podés ignorarlo.</p>
        </div>
    </div>
</body>
</html>`

// SendInvitationEmail sends a company invitation to the given address
func (s *EmailService) SendInvitationEmail(to string, data InvitationEmailData) error {
	tmpl, err := template.New("invitation").Parse(invitationEmailTemplate)
	if err != nil {
		return fmt.Errorf("failed to parse email template: %w", err)
	}

	var body bytes.Buffer
	if err := tmpl.Execute(&body, data); err != nil {
		return fmt.Errorf("failed to execute email template: %w", err)
	}

	smtpClient, err := s.server.Connect()
	if err != nil {
		return fmt.Errorf("failed to connect to SMTP server: %w", err)
	}

	msg := mail.NewMSG()
	msg.SetFrom(s.fromEmail).
		AddTo(to).
		SetSubject(fmt.Sprintf("Invitación a %s en Stratix", data.CompanyName))
	msg.SetBody(mail.TextHTML, body.String())

	if err := msg.Send(smtpClient); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	return nil
}

// AcceptURL builds the frontend link that redeems an invitation token
func (s *EmailService) AcceptURL(token string) string {
	return fmt.Sprintf("%s/invitations/accept?token=%s", s.frontend, token)
}

// IsConfigured checks if the email service has valid SMTP configuration
func (s *EmailService) IsConfigured() bool {
	return s.server.Host != "" && s.server.Username != "" && s.server.Password != ""
}
