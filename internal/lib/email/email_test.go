package email

import (
	"errors"
	"testing"

	"github.com/resend/resend-go/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSender struct {
	sent []*resend.SendEmailRequest
	err  error
}

func (f *fakeSender) Send(params *resend.SendEmailRequest) (*resend.SendEmailResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.sent = append(f.sent, params)
	return &resend.SendEmailResponse{Id: "1"}, nil
}

func newClient(sender Sender) *Client {
	logger := zerolog.Nop()
	return NewClientWithSender(sender, "noreply@mail.local", &logger)
}

func TestRender_Preview(t *testing.T) {
	for name, data := range PreviewData {
		html, err := Render(name, data)
		require.NoError(t, err, name)
		assert.Contains(t, html, data["Email"])
	}
}

func TestRender_EscapesValues(t *testing.T) {
	html, err := Render(TemplateWelcome, map[string]string{"Email": "<b>x</b>"})
	require.NoError(t, err)
	assert.NotContains(t, html, "<b>x</b>")
	assert.Contains(t, html, "&lt;b&gt;x&lt;/b&gt;")
}

func TestRender_UnknownTemplate(t *testing.T) {
	_, err := Render("missing", nil)
	assert.Error(t, err)
}

func TestSendPasswordRecoveryEmail(t *testing.T) {
	sender := &fakeSender{}
	c := newClient(sender)

	require.NoError(t, c.SendPasswordRecoveryEmail("a@b.c", "https://x/reset/tok/sealed"))
	require.Len(t, sender.sent, 1)

	msg := sender.sent[0]
	assert.Equal(t, "noreply@mail.local", msg.From)
	assert.Equal(t, []string{"a@b.c"}, msg.To)
	assert.Equal(t, SubjectPasswordRecovery, msg.Subject)
	assert.Contains(t, msg.Html, `href="https://x/reset/tok/sealed"`)
}

func TestSendWelcomeEmail_Error(t *testing.T) {
	c := newClient(&fakeSender{err: errors.New("down")})
	err := c.SendWelcomeEmail("a@b.c")
	assert.ErrorContains(t, err, "failed to send email")
}
