// Package alert отправляет письма бэк-офису о новых жалобах через Resend.
package alert

import (
	"context"
	"fmt"
	"html"
	"strings"

	"github.com/ivanoskov/civic_bot/internal/model"
	"github.com/resendlabs/resend-go"
)

// Mailer реализует service.ComplaintNotifier
type Mailer struct {
	from string
	to   []string
	send func(*resend.SendEmailRequest) error
}

func NewMailer(apiKey, from string, to []string) (*Mailer, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("resend api key is required")
	}
	if from == "" || len(to) == 0 {
		return nil, fmt.Errorf("alert sender and recipients are required")
	}

	client := resend.NewClient(apiKey)
	return &Mailer{
		from: from,
		to:   to,
		send: func(req *resend.SendEmailRequest) error {
			_, err := client.Emails.Send(req)
			return err
		},
	}, nil
}

// ParseRecipients разбирает список адресов через запятую
func ParseRecipients(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func (m *Mailer) ComplaintFiled(ctx context.Context, c model.Complaint) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	req := &resend.SendEmailRequest{
		From:    m.from,
		To:      m.to,
		Subject: Subject(c),
		Html:    Body(c),
	}
	if err := m.send(req); err != nil {
		return fmt.Errorf("failed to send complaint alert via Resend: %w", err)
	}
	return nil
}

func Subject(c model.Complaint) string {
	return fmt.Sprintf("New complaint %s: %s", c.ComplaintID, c.SubIssue)
}

// Body собирает HTML письма; все значения экранируются
func Body(c model.Complaint) string {
	var b strings.Builder
	b.WriteString("<h2>New complaint</h2><table>")
	row := func(k, v string) {
		if v == "" {
			return
		}
		fmt.Fprintf(&b, "<tr><th align=\"left\">%s</th><td>%s</td></tr>", k, html.EscapeString(v))
	}
	row("Complaint ID", c.ComplaintID)
	row("Login ID", c.LoginID)
	row("Category", c.Category)
	row("Issue", c.SubIssue)
	row("Status", c.Status.Title())
	row("Description", c.Description)
	row("Image", c.ImageURL)
	if c.Latitude != nil && c.Longitude != nil {
		row("Location", fmt.Sprintf("%.6f, %.6f", *c.Latitude, *c.Longitude))
	}
	if !c.CreatedAt.IsZero() {
		row("Filed at", c.CreatedAt.UTC().Format("2006-01-02 15:04 MST"))
	}
	b.WriteString("</table>")
	return b.String()
}
