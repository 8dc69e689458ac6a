// Package mail renders acknowledgment emails and sends them over one SMTP connection.
package mail

import (
	"errors"
	"fmt"
	"strings"

	"github.com/danielolaszy/ackmail/internal/config"
	"github.com/danielolaszy/ackmail/internal/logging"
	"github.com/danielolaszy/ackmail/pkg/models"
	"github.com/google/uuid"
	"gopkg.in/gomail.v2"
)

// ErrInvalidRecipient marks tickets whose reporter address is missing or malformed.
var ErrInvalidRecipient = errors.New("reporter email not found or invalid")

// Dialer opens an authenticated SMTP connection. *gomail.Dialer satisfies it.
type Dialer interface {
	Dial() (gomail.SendCloser, error)
}

// Notifier sends one acknowledgment per ticket.
type Notifier struct {
	Dialer   Dialer
	From     string
	FromName string
	Cc       []string
}

// Failure records a ticket whose acknowledgment could not be sent.
type Failure struct {
	Key string
	Err error
}

// Report summarizes a Notify run by ticket key.
type Report struct {
	Sent    []string
	Skipped []string
	Failed  []Failure
}

// NewNotifier creates a notifier that dials the configured relay. Port 465 uses
// implicit TLS, any other port upgrades with STARTTLS when the server offers it.
func NewNotifier(cfg *config.Config) *Notifier {
	logging.Debug("initializing mail sender",
		"host", cfg.SMTP.Host,
		"port", cfg.SMTP.Port,
		"user", cfg.SMTP.Username,
		"password", logging.MaskSensitive(cfg.SMTP.Password))

	return &Notifier{
		Dialer:   gomail.NewDialer(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.Username, cfg.SMTP.Password),
		From:     cfg.Mail.Sender,
		FromName: cfg.Mail.SenderName,
		Cc:       cfg.Mail.Cc,
	}
}

// BuildJob renders the acknowledgment for a ticket. It fails with ErrInvalidRecipient
// when the reporter email is absent or has no "@".
func BuildJob(ticket models.TicketRecord) (models.EmailJob, error) {
	email, ok := ticket.Email()
	if !ok || !strings.Contains(email, "@") {
		return models.EmailJob{}, ErrInvalidRecipient
	}

	body, err := RenderAcknowledgment(AcknowledgmentParams{
		ReporterName: ticket.ReporterName,
		TicketKey:    ticket.Key,
	})
	if err != nil {
		return models.EmailJob{}, fmt.Errorf("failed to render acknowledgment: %w", err)
	}

	return models.EmailJob{
		TicketKey: ticket.Key,
		Recipient: email,
		Subject:   Subject(ticket.Key),
		BodyHTML:  body,
	}, nil
}

// Connect opens the SMTP connection for a run. The caller owns the connection and
// must close it.
func (n *Notifier) Connect() (gomail.SendCloser, error) {
	conn, err := n.Dialer.Dial()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mail relay: %w", err)
	}
	logging.Info("smtp connection established")
	return conn, nil
}

// Notify sends an acknowledgment over conn for every ticket with a valid reporter
// email, in order. A failed send is recorded and the loop moves on.
func (n *Notifier) Notify(conn gomail.Sender, tickets []models.TicketRecord) Report {
	var report Report

	for _, ticket := range tickets {
		job, err := BuildJob(ticket)
		if err != nil {
			email := ticket.ReporterEmail
			if email == "" {
				email = EmailNotFound
			}
			logging.Warn("skipping ticket",
				"ticket", ticket.Key,
				"email", email,
				"reason", err)
			report.Skipped = append(report.Skipped, ticket.Key)
			continue
		}

		if err := gomail.Send(conn, n.buildMessage(job)); err != nil {
			logging.Error("failed to send acknowledgment",
				"ticket", job.TicketKey,
				"error", err.Error())
			report.Failed = append(report.Failed, Failure{Key: job.TicketKey, Err: err})
			continue
		}

		logging.Info("acknowledgment sent",
			"ticket", job.TicketKey,
			"recipient", job.Recipient)
		report.Sent = append(report.Sent, job.TicketKey)
	}

	return report
}

// Close closes conn and logs the outcome.
func Close(conn gomail.SendCloser) {
	if err := conn.Close(); err != nil {
		logging.Warn("failed to close smtp connection", "error", err)
		return
	}
	logging.Info("smtp connection closed")
}

func (n *Notifier) buildMessage(job models.EmailJob) *gomail.Message {
	msg := gomail.NewMessage()
	msg.SetAddressHeader("From", n.From, n.FromName)
	msg.SetHeader("To", job.Recipient)
	if len(n.Cc) > 0 {
		msg.SetHeader("Cc", n.Cc...)
	}
	msg.SetHeader("Subject", job.Subject)
	msg.SetHeader("Message-ID", fmt.Sprintf("<%s@%s>", uuid.NewString(), messageIDDomain(n.From)))
	msg.SetBody("text/html", job.BodyHTML)
	return msg
}

func messageIDDomain(address string) string {
	if i := strings.LastIndex(address, "@"); i >= 0 && i < len(address)-1 {
		return address[i+1:]
	}
	return "localhost"
}
