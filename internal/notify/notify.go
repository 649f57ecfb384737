// Package notify delivers composed reports by email.
package notify

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"gopkg.in/gomail.v2"

	"github.com/hargabyte/salesreport/internal/config"
	"github.com/hargabyte/salesreport/internal/logger"
)

// Outcome statuses
const (
	StatusSent    = "sent"
	StatusSkipped = "skipped"
	StatusFailed  = "failed"
)

// Message body sent with every report.
const messageBody = `Dear Team,

Please find attached the latest sales performance report.

Key highlights:
- Comprehensive sales analysis
- Performance visualizations
- Regional and category breakdowns

Best regards,
Automated Report System
`

// Credentials identify the SMTP account used to send reports.
type Credentials struct {
	Server  string
	Port    int
	Address string
	Secret  string
}

// CredentialsFrom converts email settings into sender credentials.
func CredentialsFrom(cfg config.EmailConfig) Credentials {
	return Credentials{
		Server:  cfg.SMTPServer,
		Port:    cfg.SMTPPort,
		Address: cfg.SenderEmail,
		Secret:  cfg.SenderPassword,
	}
}

// Complete reports whether both the sender address and secret are set.
func (c Credentials) Complete() bool {
	return c.Address != "" && c.Secret != ""
}

// Outcome is the result of one delivery attempt. Delivery failures are
// reported here rather than returned as errors.
type Outcome struct {
	Status     string   `yaml:"status" json:"status"`
	Recipients []string `yaml:"recipients,omitempty" json:"recipients,omitempty"`
	Reason     string   `yaml:"reason,omitempty" json:"reason,omitempty"`
	Err        error    `yaml:"-" json:"-"`
}

// String returns a one-line description suitable for run history.
func (o Outcome) String() string {
	if o.Reason == "" {
		return o.Status
	}
	return o.Status + ": " + o.Reason
}

// TransportError reports which step of an SMTP session failed.
type TransportError struct {
	Step string // attach, dial, send
	Err  error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("smtp %s: %v", e.Step, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// Dialer opens an authenticated SMTP session. *gomail.Dialer satisfies it;
// its Dial performs the handshake, STARTTLS and authentication.
type Dialer interface {
	Dial() (gomail.SendCloser, error)
}

// NewDialer returns the default gomail dialer for creds.
func NewDialer(creds Credentials) Dialer {
	return gomail.NewDialer(creds.Server, creds.Port, creds.Address, creds.Secret)
}

// Notifier sends report documents to recipients.
type Notifier struct {
	// Dial builds the session dialer; defaults to NewDialer.
	Dial func(Credentials) Dialer
	// Now supplies the run date for the subject line; defaults to time.Now.
	Now func() time.Time
	Log *logrus.Entry
}

// New returns a Notifier using the real SMTP dialer.
func New() *Notifier {
	return &Notifier{
		Dial: NewDialer,
		Now:  time.Now,
		Log:  logger.Get("notify"),
	}
}

// Subject returns the message subject for a run on day.
func Subject(day time.Time) string {
	return "Sales Report - " + day.Format("2006-01-02")
}

// Notify delivers documentPath to recipients. It never returns an error:
// missing recipients or credentials yield a skipped outcome without any
// transport call, and transport failures yield a failed outcome.
func (n *Notifier) Notify(ctx context.Context, documentPath string, recipients []string, creds Credentials) Outcome {
	log := n.Log
	if log == nil {
		log = logger.Discard()
	}

	recipients = uniqueRecipients(recipients)
	if len(recipients) == 0 {
		log.Info("no recipients configured, skipping email")
		return Outcome{Status: StatusSkipped, Reason: "no recipients"}
	}
	if !creds.Complete() {
		log.Info("email credentials incomplete, skipping email")
		return Outcome{Status: StatusSkipped, Recipients: recipients, Reason: "incomplete credentials"}
	}
	if err := ctx.Err(); err != nil {
		return failed(recipients, &TransportError{Step: "dial", Err: err})
	}

	if _, err := os.Stat(documentPath); err != nil {
		return failed(recipients, &TransportError{Step: "attach", Err: err})
	}

	now := time.Now
	if n.Now != nil {
		now = n.Now
	}
	msg := gomail.NewMessage()
	msg.SetHeader("From", creds.Address)
	msg.SetHeader("To", recipients...)
	msg.SetHeader("Subject", Subject(now()))
	msg.SetBody("text/plain", messageBody)
	msg.Attach(documentPath, gomail.Rename(filepath.Base(documentPath)))

	dial := n.Dial
	if dial == nil {
		dial = NewDialer
	}

	if err := send(dial(creds), msg); err != nil {
		log.WithError(err).WithField("recipients", strings.Join(recipients, ", ")).Warn("failed to send email")
		return failed(recipients, err)
	}

	log.WithField("recipients", strings.Join(recipients, ", ")).Info("email sent")
	return Outcome{Status: StatusSent, Recipients: recipients}
}

// send runs one session: dial, send, close. The session is closed on
// every path once dialed.
func send(d Dialer, msg *gomail.Message) (err error) {
	s, err := d.Dial()
	if err != nil {
		return &TransportError{Step: "dial", Err: err}
	}
	defer func() {
		if cerr := s.Close(); cerr != nil && err == nil {
			err = &TransportError{Step: "close", Err: cerr}
		}
	}()

	if err := gomail.Send(s, msg); err != nil {
		return &TransportError{Step: "send", Err: err}
	}
	return nil
}

func failed(recipients []string, err error) Outcome {
	return Outcome{Status: StatusFailed, Recipients: recipients, Reason: err.Error(), Err: err}
}

// uniqueRecipients trims blanks and duplicates, keeping first-seen order.
func uniqueRecipients(in []string) []string {
	seen := make(map[string]bool, len(in))
	var out []string
	for _, r := range in {
		r = strings.TrimSpace(r)
		if r == "" || seen[r] {
			continue
		}
		seen[r] = true
		out = append(out, r)
	}
	return out
}
