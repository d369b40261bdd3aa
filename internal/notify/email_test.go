package notify

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/playbookTV/leadscan-sub000/internal/config"
)

func testEmailConfig() *config.Config {
	return &config.Config{
		SMTPEnabled:  true,
		SMTPHost:     "smtp.example.com",
		SMTPPort:     587,
		SMTPFrom:     "leads@example.com",
		SMTPFromName: "Leadscan",
		SMTPTLS:      "starttls",
		SMTPTo:       []string{"ops@example.com", "sales@example.com"},
	}
}

func TestEmailNotify(t *testing.T) {
	e := NewEmail(testEmailConfig())

	var gotTo []string
	var gotMsg string
	e.send = func(to []string, msg []byte) error {
		gotTo = to
		gotMsg = string(msg)
		return nil
	}

	if err := e.Notify(context.Background(), testLead()); err != nil {
		t.Fatalf("Notify() error = %v", err)
	}
	if len(gotTo) != 2 {
		t.Errorf("recipients = %v, want 2", gotTo)
	}

	for _, want := range []string{
		"From: Leadscan <leads@example.com>\r\n",
		"To: ops@example.com, sales@example.com\r\n",
		"Subject: [reddit] 8/10 lead: Need a *React* developer\r\n",
		"multipart/alternative",
		"Content-Type: text/plain",
		"Content-Type: text/html",
		"--" + mimeBoundary + "--",
	} {
		if !strings.Contains(gotMsg, want) {
			t.Errorf("message missing %q", want)
		}
	}
}

func TestEmailSubjectHeader(t *testing.T) {
	tests := []struct {
		name  string
		title string
		text  string
		check func(t *testing.T, subject string)
	}{
		{
			name: "post text cannot add headers",
			text: "Need a dev\nBcc: attacker@evil.example\n\nhello",
			check: func(t *testing.T, subject string) {
				if want := "Subject: [reddit] 8/10 lead: Need a dev Bcc: attacker@evil.example hello"; subject != want {
					t.Errorf("subject = %q, want %q", subject, want)
				}
			},
		},
		{
			name:  "non-ascii title is encoded",
			title: "Café owner needs a site",
			check: func(t *testing.T, subject string) {
				if !strings.HasPrefix(subject, "Subject: =?utf-8?q?") {
					t.Errorf("subject = %q, want Q-encoded word", subject)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := NewEmail(testEmailConfig())
			var gotMsg string
			e.send = func(_ []string, msg []byte) error {
				gotMsg = string(msg)
				return nil
			}

			lead := testLead()
			lead.Title = tt.title
			if tt.text != "" {
				lead.Text = tt.text
			}
			if err := e.Notify(context.Background(), lead); err != nil {
				t.Fatalf("Notify() error = %v", err)
			}

			headers, _, ok := strings.Cut(gotMsg, "\r\n\r\n")
			if !ok {
				t.Fatal("message has no header terminator")
			}
			var subject string
			for _, line := range strings.Split(headers, "\r\n") {
				if strings.Contains(line, "\n") {
					t.Errorf("header line %q contains a bare newline", line)
				}
				if strings.HasPrefix(line, "Bcc:") {
					t.Errorf("unexpected header %q", line)
				}
				if strings.HasPrefix(line, "Subject: ") {
					subject = line
				}
			}
			tt.check(t, subject)
		})
	}
}

func TestEmailNotifyNoRecipients(t *testing.T) {
	cfg := testEmailConfig()
	cfg.SMTPTo = nil
	e := NewEmail(cfg)

	called := false
	e.send = func([]string, []byte) error {
		called = true
		return nil
	}

	if err := e.Notify(context.Background(), testLead()); err != nil {
		t.Errorf("Notify() error = %v", err)
	}
	if called {
		t.Error("send called with no recipients")
	}
}

func TestEmailNotifyError(t *testing.T) {
	e := NewEmail(testEmailConfig())
	e.send = func([]string, []byte) error { return errors.New("connection refused") }

	err := e.Notify(context.Background(), testLead())
	if err == nil || !strings.Contains(err.Error(), "connection refused") {
		t.Errorf("Notify() error = %v, want connection refused", err)
	}
}

func TestEmailFromWithoutName(t *testing.T) {
	cfg := testEmailConfig()
	cfg.SMTPFromName = ""
	e := NewEmail(cfg)

	msg := string(e.buildMessage([]string{"a@example.com"}, "subj", "", "text"))
	if !strings.Contains(msg, "From: leads@example.com\r\n") {
		t.Errorf("message From header wrong:\n%s", msg)
	}
	if strings.Contains(msg, "text/html") {
		t.Error("message has HTML part for empty HTML body")
	}
}

func TestLeadTemplates(t *testing.T) {
	lead := testLead()
	lead.Text = "<script>alert(1)</script> need help"

	htmlBody := LeadHTML(lead)
	if strings.Contains(htmlBody, "<script>") {
		t.Error("LeadHTML() did not escape post text")
	}
	for _, want := range []string{"Startup needs a React contractor", "$5k", "react developer", lead.URL} {
		if !strings.Contains(htmlBody, want) {
			t.Errorf("LeadHTML() missing %q", want)
		}
	}

	text := LeadText(lead)
	for _, want := range []string{"Score: 8/10 (quick 8)", "Author: founder_42", "Keywords: react developer", lead.URL} {
		if !strings.Contains(text, want) {
			t.Errorf("LeadText() missing %q", want)
		}
	}
}
