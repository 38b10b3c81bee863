package mailer_test

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wneessen/go-mail"

	"github.com/sysu-ecnc-dev/shift-coverage/backend/internal/domain"
	"github.com/sysu-ecnc-dev/shift-coverage/backend/internal/mailer"
)

type fakeSender struct {
	sent []*mail.Msg
	err  error
}

func (s *fakeSender) DialAndSend(messages ...*mail.Msg) error {
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, messages...)
	return nil
}

type fakeRenderer struct {
	err error
}

func (r *fakeRenderer) Render(message domain.MailMessage) (*mail.Msg, error) {
	if r.err != nil {
		return nil, r.err
	}
	m := mail.NewMsg()
	m.Subject(message.Subject)
	return m, nil
}

func mailBody(t *testing.T) []byte {
	t.Helper()

	body, err := json.Marshal(domain.MailMessage{
		Type:    domain.MailTypeErrorReport,
		To:      []string{"ops@example.com"},
		Subject: "Coverage errors",
	})
	require.NoError(t, err)
	return body
}

func TestWorkerHandle(t *testing.T) {
	tests := map[string]struct {
		body      func(t *testing.T) []byte
		renderErr error
		sendErr   error
		want      mailer.Outcome
		sent      int
	}{
		"sent": {
			body: mailBody,
			want: mailer.OutcomeAck,
			sent: 1,
		},
		"malformed body is dropped": {
			body: func(t *testing.T) []byte { return []byte("{not json") },
			want: mailer.OutcomeDrop,
		},
		"render failure is dropped": {
			body:      mailBody,
			renderErr: errors.New("no template"),
			want:      mailer.OutcomeDrop,
		},
		"smtp failure is requeued": {
			body:    mailBody,
			sendErr: errors.New("connection refused"),
			want:    mailer.OutcomeRequeue,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			sender := &fakeSender{err: tt.sendErr}
			worker := mailer.NewWorker(sender, &fakeRenderer{err: tt.renderErr})

			assert.Equal(t, tt.want, worker.Handle(tt.body(t)))
			assert.Len(t, sender.sent, tt.sent)
		})
	}
}

func TestWorkerRunStopsWhenCancelled(t *testing.T) {
	worker := mailer.NewWorker(&fakeSender{}, &fakeRenderer{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.NoError(t, worker.Run(ctx, nil))
}

func TestTemplateRenderer(t *testing.T) {
	dir := t.TempDir()
	tmpl := `<p>{{ .ShiftName }}</p>{{ range .Members }}<li>{{ . }}</li>{{ end }}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "missing_contact_email.html"), []byte(tmpl), 0o644))

	renderer := mailer.NewTemplateRenderer("noreply@example.com", dir)

	m, err := renderer.Render(domain.MailMessage{
		Type:    domain.MailTypeMissingContact,
		To:      []string{"admin@example.com"},
		Subject: "Missing contact information",
		Data:    domain.MissingContactMailData{ShiftName: "Saturday (Noon shift) January 08, 2022", Members: []string{"Bob"}},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"Missing contact information"}, m.GetGenHeader(mail.HeaderSubject))

	_, err = renderer.Render(domain.MailMessage{Type: "newsletter", To: []string{"admin@example.com"}})
	assert.Error(t, err)

	_, err = renderer.Render(domain.MailMessage{Type: domain.MailTypeMissingContact})
	assert.Error(t, err)

	_, err = renderer.Render(domain.MailMessage{Type: domain.MailTypeShiftReport, To: []string{"crew@example.com"}})
	assert.Error(t, err, "template file does not exist")
}
