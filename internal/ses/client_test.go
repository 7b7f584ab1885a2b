package ses

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appconfig "github.com/ignite/jtbd-explorer/internal/config"
)

type fakeSES struct {
	inputs []*sesv2.SendEmailInput
	err    error
}

func (f *fakeSES) SendEmail(_ context.Context, in *sesv2.SendEmailInput, _ ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error) {
	f.inputs = append(f.inputs, in)
	if f.err != nil {
		return nil, f.err
	}
	return &sesv2.SendEmailOutput{MessageId: aws.String("msg-1")}, nil
}

func TestSendInvite(t *testing.T) {
	api := &fakeSES{}
	c := newClient(api, "JTBD Explorer <no-reply@example.com>", "https://jtbd.example.com/login")

	require.NoError(t, c.SendInvite(context.Background(), "carla@example.com", "org-1"))
	require.Len(t, api.inputs, 1)

	in := api.inputs[0]
	assert.Equal(t, "JTBD Explorer <no-reply@example.com>", aws.ToString(in.FromEmailAddress))
	assert.Equal(t, []string{"carla@example.com"}, in.Destination.ToAddresses)
	assert.Contains(t, aws.ToString(in.Content.Simple.Body.Text.Data), "https://jtbd.example.com/login?org=org-1")
	assert.Contains(t, aws.ToString(in.Content.Simple.Body.Html.Data), `href="https://jtbd.example.com/login?org=org-1"`)
}

func TestSendInvite_Error(t *testing.T) {
	api := &fakeSES{err: errors.New("throttled")}
	c := newClient(api, "no-reply@example.com", "")

	err := c.SendInvite(context.Background(), "carla@example.com", "org-1")
	assert.ErrorContains(t, err, "throttled")
}

func TestInviteContent(t *testing.T) {
	_, text, html := inviteContent("", "org-1")
	assert.NotContains(t, text, "Sign in here")
	assert.NotContains(t, html, "href")

	_, text, _ = inviteContent("https://x.example/auth?next=home", "org-9")
	assert.Contains(t, text, "https://x.example/auth?next=home&org=org-9")
}

func TestNewClient_RequiresFromAddress(t *testing.T) {
	_, err := NewClient(context.Background(), appconfig.SESConfig{Region: "us-east-1"})
	assert.ErrorContains(t, err, "from_address")
}
