// Package ses sends member invitations through AWS SES v2.
package ses

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"

	appconfig "github.com/ignite/jtbd-explorer/internal/config"
	"github.com/ignite/jtbd-explorer/internal/pkg/logger"
)

// sendEmailAPI is the part of the SES client the inviter uses.
type sendEmailAPI interface {
	SendEmail(ctx context.Context, in *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

// Client sends invitation emails.
type Client struct {
	api       sendEmailAPI
	from      string
	inviteURL string
	log       *logger.Logger
}

// NewClient creates an SES client. Static keys are used when both are set;
// otherwise the default credential chain applies.
func NewClient(ctx context.Context, cfg appconfig.SESConfig) (*Client, error) {
	if cfg.FromAddress == "" {
		return nil, fmt.Errorf("ses from_address is required")
	}
	opts := []func(*config.LoadOptions) error{config.WithRegion(cfg.Region)}
	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")))
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("loading AWS config: %w", err)
	}
	return newClient(sesv2.NewFromConfig(awsCfg), cfg.FromAddress, cfg.InviteURL), nil
}

func newClient(api sendEmailAPI, from, inviteURL string) *Client {
	return &Client{api: api, from: from, inviteURL: inviteURL, log: logger.New("ses")}
}

// SendInvite emails an invitation to join orgID.
func (c *Client) SendInvite(ctx context.Context, email, orgID string) error {
	subject, text, html := inviteContent(c.inviteURL, orgID)
	input := &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(c.from),
		Destination:      &types.Destination{ToAddresses: []string{email}},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{Data: aws.String(subject), Charset: aws.String("UTF-8")},
				Body: &types.Body{
					Text: &types.Content{Data: aws.String(text), Charset: aws.String("UTF-8")},
					Html: &types.Content{Data: aws.String(html), Charset: aws.String("UTF-8")},
				},
			},
		},
		EmailTags: []types.MessageTag{
			{Name: aws.String("kind"), Value: aws.String("member_invite")},
		},
	}

	out, err := c.api.SendEmail(ctx, input)
	if err != nil {
		return fmt.Errorf("send invite: %w", err)
	}
	messageID := ""
	if out != nil && out.MessageId != nil {
		messageID = *out.MessageId
	}
	c.log.Info("invite sent", "email", email, "org_id", orgID, "message_id", messageID)
	return nil
}

func inviteContent(inviteURL, orgID string) (subject, text, html string) {
	subject = "You have been invited to the JTBD Explorer"
	link := inviteURL
	if link != "" {
		sep := "?"
		if strings.Contains(link, "?") {
			sep = "&"
		}
		link += sep + "org=" + orgID
	}
	text = "You have been added to an organization in the JTBD Explorer."
	html = "<p>You have been added to an organization in the JTBD Explorer.</p>"
	if link != "" {
		text += "\n\nSign in here: " + link
		html += fmt.Sprintf(`<p><a href="%s">Sign in</a></p>`, link)
	}
	return subject, text, html
}
