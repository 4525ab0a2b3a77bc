package service

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/aldianriski/portfolioapi/internal/config"
	"github.com/aldianriski/portfolioapi/internal/models"
	"github.com/aldianriski/portfolioapi/pkg/utils/zaplogger"
	"github.com/resend/resend-go/v2"
)

// Notifier sends the emails that follow a contact submission
type Notifier interface {
	NotifyContact(ctx context.Context, msg *models.ContactMessage) error
}

// NopNotifier drops every notification
type NopNotifier struct{}

func (NopNotifier) NotifyContact(ctx context.Context, msg *models.ContactMessage) error {
	return nil
}

var contactNotificationTmpl = template.Must(template.New("notification").Parse(`<!DOCTYPE html>
<html lang="en">
<head><meta charset="UTF-8"><title>New Contact Message</title></head>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px;">
  <h1 style="font-size: 22px;">New Contact Message</h1>
  <p><strong>From:</strong> {{.Name}}</p>
  <p><strong>Email:</strong> <a href="mailto:{{.Email}}">{{.Email}}</a></p>
  <p><strong>Message:</strong></p>
  <div style="white-space: pre-wrap; border: 1px solid #e5e7eb; padding: 12px 16px;">{{.Message}}</div>
  <p><small>Locale: {{.Locale}} | Submitted: {{.SubmittedAt}}</small></p>
  <p style="color: #6b7280;">Reply directly to <strong>{{.Email}}</strong> to respond to this message.</p>
</body>
</html>`))

var contactAutoReplyTmpl = template.Must(template.New("autoreply").Parse(`<!DOCTYPE html>
<html lang="en">
<head><meta charset="UTF-8"></head>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px;">
  <h2>Hi {{.Name}}!</h2>
  <p>Thank you for reaching out through my portfolio. I've received your message and will get back to you as soon as possible.</p>
  <p>I typically respond within 24-48 hours.</p>
  <p>Best regards,<br><strong>{{.Owner}}</strong></p>
</body>
</html>`))

type contactEmailData struct {
	Name        string
	Email       string
	Message     string
	Locale      string
	SubmittedAt string
	Owner       string
}

// ResendNotifier sends notifications through the Resend API
type ResendNotifier struct {
	client    *resend.Client
	from      string
	to        string
	autoReply bool
	owner     string
}

// NewNotifier returns a Resend notifier, or a NopNotifier when the API key or
// the recipient is not configured
func NewNotifier(cfg *config.Config) Notifier {
	if cfg.ResendAPIKey == "" || cfg.NotificationEmail == "" {
		zaplogger.Info("email notifications disabled")
		return NopNotifier{}
	}
	return &ResendNotifier{
		client:    resend.NewClient(cfg.ResendAPIKey),
		from:      cfg.ResendFromEmail,
		to:        cfg.NotificationEmail,
		autoReply: cfg.ContactAutoReply,
		owner:     models.DefaultHeroName,
	}
}

// NotifyContact mails the owner and, when enabled, an auto-reply to the sender
func (n *ResendNotifier) NotifyContact(ctx context.Context, msg *models.ContactMessage) error {
	data := contactFromMessage(msg, n.owner)

	html, err := renderContactNotification(data)
	if err != nil {
		return err
	}
	_, err = n.client.Emails.SendWithContext(ctx, &resend.SendEmailRequest{
		From:    n.from,
		To:      []string{n.to},
		Subject: "New Contact Message from " + msg.Name,
		Html:    html,
		ReplyTo: msg.Email,
	})
	if err != nil {
		return fmt.Errorf("send contact notification: %w", err)
	}
	zaplogger.Info("contact notification sent", zaplogger.Fields{"from": msg.Email})

	if !n.autoReply {
		return nil
	}
	reply, err := renderContactAutoReply(data)
	if err != nil {
		return err
	}
	_, err = n.client.Emails.SendWithContext(ctx, &resend.SendEmailRequest{
		From:    n.from,
		To:      []string{msg.Email},
		Subject: "Thanks for reaching out!",
		Html:    reply,
	})
	if err != nil {
		return fmt.Errorf("send contact auto-reply: %w", err)
	}
	return nil
}

func contactFromMessage(msg *models.ContactMessage, owner string) contactEmailData {
	submitted := msg.CreatedAt
	if submitted.IsZero() {
		submitted = time.Now()
	}
	return contactEmailData{
		Name:        msg.Name,
		Email:       msg.Email,
		Message:     msg.Message,
		Locale:      strings.ToUpper(msg.Locale),
		SubmittedAt: submitted.UTC().Format(time.RFC1123),
		Owner:       owner,
	}
}

func renderContactNotification(data contactEmailData) (string, error) {
	var buf bytes.Buffer
	if err := contactNotificationTmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render contact notification: %w", err)
	}
	return buf.String(), nil
}

func renderContactAutoReply(data contactEmailData) (string, error) {
	var buf bytes.Buffer
	if err := contactAutoReplyTmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render contact auto-reply: %w", err)
	}
	return buf.String(), nil
}
