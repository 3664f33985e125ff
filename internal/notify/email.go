// Package notify emails a digest of newly collected jobs.
package notify

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"espritjobs/internal/jobs"

	"github.com/jordan-wright/email"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("espritjobs/notify")

type SmtpConfig struct {
	Server       string   `json:"server"`
	Port         int      `json:"port"`
	EmailAddress string   `json:"email_address"`
	Password     string   `json:"password"`
	To           []string `json:"to"`
}

func (c SmtpConfig) Enabled() bool {
	return c.Server != "" && len(c.To) > 0
}

// Sender sends a prepared message.
type Sender func(mail *email.Email) error

type Notifier struct {
	config SmtpConfig
	send   Sender
}

func NewNotifier(config SmtpConfig) Notifier {
	n := Notifier{config: config}
	n.send = n.sendSmtp
	return n
}

func (n Notifier) sendSmtp(mail *email.Email) error {
	addr := fmt.Sprintf("%s:%d", n.config.Server, n.config.Port)
	err := mail.Send(addr, smtp.PlainAuth("", n.config.EmailAddress, n.config.Password, n.config.Server))
	if err != nil && strings.Contains(err.Error(), "server doesn't support AUTH") {
		err = mail.Send(addr, nil)
	}
	return err
}

// Digest builds the message listing the given records.
func (n Notifier) Digest(records []jobs.Record) *email.Email {
	mail := email.NewEmail()
	mail.From = fmt.Sprintf("ESPRIT Jobs <%s>", n.config.EmailAddress)
	mail.To = n.config.To
	if len(records) == 1 {
		mail.Subject = "1 new job on ESPRIT Connect"
	} else {
		mail.Subject = fmt.Sprintf("%d new jobs on ESPRIT Connect", len(records))
	}

	var body strings.Builder
	body.WriteString("The following jobs were found in the latest run.\n\n")
	for _, r := range records {
		fmt.Fprintf(&body, "#%d %s\n  %s, %s\n", r.JobID, r.Title, r.Company, r.Location)
		if r.ClosingDate != nil {
			fmt.Fprintf(&body, "  %s\n", *r.ClosingDate)
		}
		fmt.Fprintf(&body, "  %s\n\n", r.URL)
	}
	mail.Text = []byte(body.String())
	return mail
}

// Send emails a digest of records. Nothing is sent for an empty list.
func (n Notifier) Send(ctx context.Context, records []jobs.Record) error {
	_, span := tracer.Start(ctx, "notify:Send")
	defer span.End()

	if len(records) == 0 {
		return nil
	}
	err := n.send(n.Digest(records))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to send email")
		return err
	}
	return nil
}
