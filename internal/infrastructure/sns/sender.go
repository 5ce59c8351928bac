package sns

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/cheflamb/brigade-api/internal/config"
	"github.com/cheflamb/brigade-api/internal/domain"
)

// MaxMessageLength is the single-segment SMS limit. Longer bodies are
// rejected, never truncated.
const MaxMessageLength = 160

var e164 = regexp.MustCompile(`^\+[1-9]\d{1,14}$`)

// optOutKeywords are the carrier-standard stop words. Matching is exact
// (after trim + uppercase), not substring.
var optOutKeywords = map[string]bool{
	"STOP":        true,
	"QUIT":        true,
	"CANCEL":      true,
	"UNSUBSCRIBE": true,
	"END":         true,
}

// SMSSender sends SMS messages. Implementations must validate the
// destination and body before touching the wire.
type SMSSender interface {
	SendSMS(ctx context.Context, to, message string) (messageID string, err error)
}

type sender struct {
	client *sns.Client
}

func NewSender(cfg *config.Config) (SMSSender, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithRegion(cfg.SNSRegion),
	)
	if err != nil {
		return nil, err
	}
	return &sender{client: sns.NewFromConfig(awsCfg)}, nil
}

func (s *sender) SendSMS(ctx context.Context, to, message string) (string, error) {
	if err := Validate(to, message); err != nil {
		return "", err
	}
	out, err := s.client.Publish(ctx, &sns.PublishInput{
		PhoneNumber: &to,
		Message:     &message,
	})
	if err != nil {
		return "", fmt.Errorf("sns publish: %w: %v", domain.ErrProviderFailure, err)
	}
	id := ""
	if out.MessageId != nil {
		id = *out.MessageId
	}
	return id, nil
}

// Validate checks an outbound SMS before any side effect: destination must be
// E.164 and the body must fit one segment.
func Validate(to, message string) error {
	if !e164.MatchString(to) {
		return fmt.Errorf("destination %q: %w", to, domain.ErrInvalidPhoneNumber)
	}
	if len(message) > MaxMessageLength {
		return fmt.Errorf("%d chars (max %d): %w", len(message), MaxMessageLength, domain.ErrMessageTooLong)
	}
	return nil
}

// IsOptOut reports whether an inbound message body is an opt-out request.
// The literal trimmed, uppercased text must equal one of the stop words.
func IsOptOut(body string) bool {
	return optOutKeywords[strings.ToUpper(strings.TrimSpace(body))]
}
