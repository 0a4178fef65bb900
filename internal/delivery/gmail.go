package delivery

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"

	"github.com/jonathan/listing-insights/internal/pipeline"
)

// GmailSender delivers the report through the Gmail API on behalf of
// the authenticated user.
type GmailSender struct {
	svc  *gmail.Service
	from string
	to   string
}

// NewGmailSender creates a sender. from may be empty, in which case
// Gmail fills in the authenticated account.
func NewGmailSender(ctx context.Context, credentialsFile, from, to string) (*GmailSender, error) {
	svc, err := gmail.NewService(ctx,
		option.WithCredentialsFile(credentialsFile),
		option.WithScopes(gmail.GmailSendScope),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create gmail service: %w", err)
	}
	return &GmailSender{svc: svc, from: from, to: to}, nil
}

// Send formats the run state and submits it as a single plain-text
// message.
func (s *GmailSender) Send(ctx context.Context, state *pipeline.RunState) error {
	raw := rawMessage(s.from, s.to, Subject(state), Body(state))

	_, err := s.svc.Users.Messages.Send("me", &gmail.Message{Raw: raw}).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to send report email: %w", err)
	}
	return nil
}

// rawMessage assembles an RFC 2822 message and encodes it the way the
// Gmail API expects (base64url, no padding requirements beyond std).
func rawMessage(from, to, subject, body string) string {
	var b strings.Builder
	if from != "" {
		fmt.Fprintf(&b, "From: %s\r\n", from)
	}
	fmt.Fprintf(&b, "To: %s\r\n", to)
	fmt.Fprintf(&b, "Subject: %s\r\n", subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=\"UTF-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(body)

	return base64.URLEncoding.EncodeToString([]byte(b.String()))
}
