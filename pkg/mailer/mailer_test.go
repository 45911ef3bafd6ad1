package mailer

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/PrincipieCyupe/tyi/pkg/config"
)

type fakeSendClient struct {
	status int
	err    error
	sent   *mail.SGMailV3
}

func (f *fakeSendClient) SendWithContext(ctx context.Context, email *mail.SGMailV3) (*rest.Response, error) {
	f.sent = email
	if f.err != nil {
		return nil, f.err
	}
	return &rest.Response{StatusCode: f.status}, nil
}

var testMailConfig = config.MailConfig{FromEmail: "noreply@tegura.org", FromName: "Tegura"}

func TestSendGridMailerSend(t *testing.T) {
	client := &fakeSendClient{status: http.StatusAccepted}
	m := newSendGridMailer(client, testMailConfig, zap.NewNop())

	err := m.Send(context.Background(), Message{To: "user@example.com", Subject: "Hi", HTML: "<p>hi</p>", ReplyTo: "sender@example.com"})
	require.NoError(t, err)
	require.NotNil(t, client.sent)
	assert.Equal(t, "Hi", client.sent.Subject)
	assert.Equal(t, "noreply@tegura.org", client.sent.From.Address)
	require.NotNil(t, client.sent.ReplyTo)
	assert.Equal(t, "sender@example.com", client.sent.ReplyTo.Address)
}

func TestSendGridMailerRejectsNon2xx(t *testing.T) {
	m := newSendGridMailer(&fakeSendClient{status: http.StatusUnauthorized}, testMailConfig, zap.NewNop())

	err := m.Send(context.Background(), Message{To: "user@example.com", Subject: "Hi"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
}

func TestSendGridMailerTransportError(t *testing.T) {
	m := newSendGridMailer(&fakeSendClient{err: errors.New("dial tcp")}, testMailConfig, zap.NewNop())
	require.Error(t, m.Send(context.Background(), Message{To: "user@example.com"}))
}

func TestSendGridMailerNeedsSender(t *testing.T) {
	m := newSendGridMailer(&fakeSendClient{status: http.StatusAccepted}, config.MailConfig{}, zap.NewNop())
	require.ErrorIs(t, m.Send(context.Background(), Message{To: "user@example.com"}), ErrNotConfigured)
}

func TestNewFallsBackToLogMailer(t *testing.T) {
	m := New(config.MailConfig{}, nil)
	_, ok := m.(*LogMailer)
	assert.True(t, ok)
	assert.NoError(t, m.Send(context.Background(), Message{To: "user@example.com"}))
}

func TestRenderResetEmbedsLink(t *testing.T) {
	body, err := RenderReset(ResetData{FirstName: "Aline", Link: "https://tegura.org/reset-password/abc", ExpiresIn: "1 hour"})
	require.NoError(t, err)
	assert.Contains(t, body, "Aline")
	assert.Contains(t, body, "https://tegura.org/reset-password/abc")
	assert.Contains(t, body, "1 hour")
}

func TestRenderContactEscapesInput(t *testing.T) {
	body, err := RenderContact(ContactData{FirstName: "Eve", Message: "<script>alert(1)</script>"})
	require.NoError(t, err)
	assert.NotContains(t, body, "<script>")
	assert.Contains(t, body, "&lt;script&gt;")
}
