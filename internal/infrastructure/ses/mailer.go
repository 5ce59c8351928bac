package ses

import (
	"context"
	"fmt"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/cheflamb/brigade-api/internal/config"
	"github.com/cheflamb/brigade-api/internal/domain"
)

// Mailer sends emails and returns the provider message id.
type Mailer interface {
	SendEmail(ctx context.Context, to, subject, htmlBody, textBody string) (messageID string, err error)
}

type mailer struct {
	client *ses.Client
	from   string
}

func NewMailer(cfg *config.Config) (Mailer, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithRegion(cfg.AWSRegion),
	)
	if err != nil {
		return nil, err
	}
	return &mailer{client: ses.NewFromConfig(awsCfg), from: cfg.SESFrom}, nil
}

func (m *mailer) SendEmail(ctx context.Context, to, subject, htmlBody, textBody string) (string, error) {
	out, err := m.client.SendEmail(ctx, &ses.SendEmailInput{
		Source: &m.from,
		Destination: &types.Destination{
			ToAddresses: []string{to},
		},
		Message: &types.Message{
			Subject: &types.Content{Data: &subject},
			Body: &types.Body{
				Html: &types.Content{Data: &htmlBody},
				Text: &types.Content{Data: &textBody},
			},
		},
	})
	if err != nil {
		return "", fmt.Errorf("ses send: %w: %v", domain.ErrProviderFailure, err)
	}
	id := ""
	if out.MessageId != nil {
		id = *out.MessageId
	}
	return id, nil
}
