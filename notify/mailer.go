// Package notify sends the shop's e-mail notifications.
package notify

import (
	"bytes"
	"context"
	"fmt"
	"html/template"

	"github.com/resend/resend-go/v2"
)

type ContactItem struct {
	Title    string
	Quantity int
	Price    float64
}

func (i ContactItem) LineTotal() float64 {
	return i.Price * float64(i.Quantity)
}

// ContactMail is a submitted contact form, optionally carrying a basket.
type ContactMail struct {
	Name        string
	Email       string
	Phone       string
	Subject     string
	Message     string
	Items       []ContactItem
	Total       float64
	OrderNumber string
	Currency    string
}

func (m ContactMail) IsOrder() bool {
	return len(m.Items) > 0
}

func (m ContactMail) Title() string {
	switch {
	case m.IsOrder():
		return "Yeni Sifariş - " + m.Name
	case m.Subject != "":
		return m.Subject
	default:
		return "Yeni mesaj - " + m.Name
	}
}

type Mailer interface {
	SendContact(ctx context.Context, m ContactMail) error
}

type emailSender interface {
	SendWithContext(ctx context.Context, params *resend.SendEmailRequest) (*resend.SendEmailResponse, error)
}

// ResendMailer delivers notifications through the Resend API.
type ResendMailer struct {
	emails emailSender
	from   string
	inbox  string
}

func NewResendMailer(apiKey, from, inbox string) *ResendMailer {
	client := resend.NewClient(apiKey)
	return &ResendMailer{emails: client.Emails, from: from, inbox: inbox}
}

func (r *ResendMailer) SendContact(ctx context.Context, m ContactMail) error {
	body, err := RenderContact(m)
	if err != nil {
		return err
	}
	_, err = r.emails.SendWithContext(ctx, &resend.SendEmailRequest{
		From:    r.from,
		To:      []string{r.inbox},
		ReplyTo: m.Email,
		Subject: m.Title(),
		Html:    body,
	})
	if err != nil {
		return fmt.Errorf("send contact mail: %w", err)
	}
	return nil
}

var contactTemplate = template.Must(template.New("contact").Funcs(template.FuncMap{
	"money": func(v float64) string { return fmt.Sprintf("%.2f", v) },
}).Parse(`<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <h2>{{if .IsOrder}}🛒 Yeni Sifariş{{else}}Yeni Əlaqə Mesajı{{end}}</h2>
  <div style="background-color: #f5f5f5; padding: 20px;">
    <p><strong>Ad:</strong> {{.Name}}</p>
    <p><strong>E-poçt:</strong> <a href="mailto:{{.Email}}">{{.Email}}</a></p>
    <p><strong>Telefon:</strong> {{.Phone}}</p>
    {{if .Subject}}<p><strong>Mövzu:</strong> {{.Subject}}</p>{{end}}
    {{if .OrderNumber}}<p><strong>Sifariş:</strong> {{.OrderNumber}}</p>{{end}}
  </div>
  {{if .IsOrder}}
  <table style="width: 100%; border-collapse: collapse;">
    <thead><tr><th>Məhsul</th><th>Say</th><th>Qiymət</th></tr></thead>
    <tbody>
    {{range .Items}}<tr><td>{{.Title}}</td><td>{{.Quantity}}</td><td>{{$.Currency}} {{money .LineTotal}}</td></tr>
    {{end}}</tbody>
    <tfoot><tr><td colspan="2">Cəmi:</td><td>{{.Currency}} {{money .Total}}</td></tr></tfoot>
  </table>
  {{end}}
  <div style="border-left: 4px solid #4F46E5; padding: 20px;">
    <h3>Mesaj:</h3>
    <p style="white-space: pre-wrap;">{{if .Message}}{{.Message}}{{else}}Mesaj yoxdur{{end}}</p>
  </div>
</div>`))

// RenderContact builds the HTML body; user input is escaped.
func RenderContact(m ContactMail) (string, error) {
	if m.Currency == "" {
		m.Currency = "AZN"
	}
	var buf bytes.Buffer
	if err := contactTemplate.Execute(&buf, m); err != nil {
		return "", fmt.Errorf("render contact mail: %w", err)
	}
	return buf.String(), nil
}
