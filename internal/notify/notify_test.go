package notify

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"gopkg.in/gomail.v2"
)

// fakeSession records what was sent through it.
type fakeSession struct {
	from    string
	to      []string
	body    bytes.Buffer
	sendErr error
	closed  bool
}

func (s *fakeSession) Send(from string, to []string, msg io.WriterTo) error {
	if s.sendErr != nil {
		return s.sendErr
	}
	s.from = from
	s.to = to
	_, err := msg.WriteTo(&s.body)
	return err
}

func (s *fakeSession) Close() error {
	s.closed = true
	return nil
}

type fakeDialer struct {
	session *fakeSession
	dialErr error
	dials   int
}

func (d *fakeDialer) Dial() (gomail.SendCloser, error) {
	d.dials++
	if d.dialErr != nil {
		return nil, d.dialErr
	}
	return d.session, nil
}

var fixedNow = time.Date(2024, time.June, 3, 9, 0, 0, 0, time.UTC)

func newTestNotifier(d *fakeDialer) *Notifier {
	return &Notifier{
		Dial: func(Credentials) Dialer { return d },
		Now:  func() time.Time { return fixedNow },
	}
}

func testDocument(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sales_report_20240603.pdf")
	if err := os.WriteFile(path, []byte("%PDF-1.3 test"), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

var goodCreds = Credentials{Server: "smtp.example.test", Port: 587, Address: "reports@example.test", Secret: "s3cret"}

func TestNotify_Skipped(t *testing.T) {
	tests := []struct {
		name       string
		recipients []string
		creds      Credentials
		reason     string
	}{
		{"no recipients", nil, goodCreds, "no recipients"},
		{"blank recipients", []string{"", "  "}, goodCreds, "no recipients"},
		{"missing address", []string{"a@example.test"}, Credentials{Secret: "x"}, "incomplete credentials"},
		{"missing secret", []string{"a@example.test"}, Credentials{Address: "r@example.test"}, "incomplete credentials"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := &fakeDialer{session: &fakeSession{}}
			out := newTestNotifier(d).Notify(context.Background(), testDocument(t), tt.recipients, tt.creds)

			if out.Status != StatusSkipped {
				t.Errorf("status = %s, want skipped", out.Status)
			}
			if out.Reason != tt.reason {
				t.Errorf("reason = %q, want %q", out.Reason, tt.reason)
			}
			if d.dials != 0 {
				t.Errorf("skipped notification must not dial, got %d dials", d.dials)
			}
		})
	}
}

func TestNotify_Sent(t *testing.T) {
	session := &fakeSession{}
	d := &fakeDialer{session: session}
	doc := testDocument(t)

	out := newTestNotifier(d).Notify(context.Background(), doc,
		[]string{"a@example.test", "b@example.test", "a@example.test"}, goodCreds)

	if out.Status != StatusSent || out.Err != nil {
		t.Fatalf("unexpected outcome: %+v", out)
	}
	if len(out.Recipients) != 2 {
		t.Errorf("expected duplicate recipients removed, got %v", out.Recipients)
	}
	if !session.closed {
		t.Error("session was not closed")
	}
	if session.from != goodCreds.Address {
		t.Errorf("from = %s", session.from)
	}
	if len(session.to) != 2 {
		t.Errorf("to = %v", session.to)
	}

	raw := session.body.String()
	for _, want := range []string{
		"Subject: Sales Report - 2024-06-03",
		"Please find attached the latest sales performance report.",
		`filename="sales_report_20240603.pdf"`,
	} {
		if !strings.Contains(raw, want) {
			t.Errorf("message missing %q", want)
		}
	}
}

func TestNotify_TransportFailures(t *testing.T) {
	tests := []struct {
		name   string
		dialer *fakeDialer
		step   string
		closed bool
	}{
		{
			name:   "dial fails",
			dialer: &fakeDialer{dialErr: errors.New("535 authentication failed"), session: &fakeSession{}},
			step:   "dial",
		},
		{
			name:   "send fails",
			dialer: &fakeDialer{session: &fakeSession{sendErr: errors.New("552 message too large")}},
			step:   "send",
			closed: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := newTestNotifier(tt.dialer).Notify(context.Background(), testDocument(t),
				[]string{"a@example.test"}, goodCreds)

			if out.Status != StatusFailed {
				t.Fatalf("status = %s, want failed", out.Status)
			}
			var te *TransportError
			if !errors.As(out.Err, &te) {
				t.Fatalf("expected TransportError, got %v", out.Err)
			}
			if te.Step != tt.step {
				t.Errorf("step = %s, want %s", te.Step, tt.step)
			}
			if tt.dialer.session.closed != tt.closed {
				t.Errorf("session closed = %v, want %v", tt.dialer.session.closed, tt.closed)
			}
			if out.Reason == "" {
				t.Error("failed outcome should carry a reason")
			}
		})
	}
}

func TestNotify_MissingDocument(t *testing.T) {
	d := &fakeDialer{session: &fakeSession{}}
	out := newTestNotifier(d).Notify(context.Background(), filepath.Join(t.TempDir(), "gone.pdf"),
		[]string{"a@example.test"}, goodCreds)

	var te *TransportError
	if out.Status != StatusFailed || !errors.As(out.Err, &te) || te.Step != "attach" {
		t.Fatalf("unexpected outcome: %+v", out)
	}
	if d.dials != 0 {
		t.Error("should not dial without a document")
	}
}

func TestOutcomeString(t *testing.T) {
	if got := (Outcome{Status: StatusSent}).String(); got != "sent" {
		t.Errorf("got %q", got)
	}
	if got := (Outcome{Status: StatusSkipped, Reason: "no recipients"}).String(); got != "skipped: no recipients" {
		t.Errorf("got %q", got)
	}
}
