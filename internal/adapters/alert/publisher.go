// Package alert publishes fraud and failure notifications.
package alert

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"

	"github.com/okian/fraudstream/pkg/logger"
)

// maxSubjectLen is the SNS subject limit.
const maxSubjectLen = 100

// Publisher delivers one message to a topic.
type Publisher interface {
	Publish(ctx context.Context, topic, message, subject string) error
}

// PublishAPI is the subset of the SNS client we use.
type PublishAPI interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// SNSPublisher publishes to SNS topics.
type SNSPublisher struct {
	client PublishAPI
}

// NewSNSPublisher wraps an existing SNS client.
func NewSNSPublisher(client PublishAPI) *SNSPublisher {
	return &SNSPublisher{client: client}
}

// NewSNSPublisherFromConfig builds the SNS client from cfg.
func NewSNSPublisherFromConfig(cfg aws.Config, baseEndpoint string) *SNSPublisher {
	client := sns.NewFromConfig(cfg, func(o *sns.Options) {
		if baseEndpoint != "" {
			o.BaseEndpoint = aws.String(baseEndpoint)
		}
	})
	return NewSNSPublisher(client)
}

// Publish implements Publisher.
func (p *SNSPublisher) Publish(ctx context.Context, topic, message, subject string) error {
	_, err := p.client.Publish(ctx, &sns.PublishInput{
		TopicArn: aws.String(topic),
		Message:  aws.String(message),
		Subject:  aws.String(sanitizeSubject(subject)),
	})
	if err != nil {
		return fmt.Errorf("sns publish to %s: %w", topic, err)
	}
	return nil
}

// sanitizeSubject keeps a subject within SNS rules: printable ASCII on a
// single line, at most 100 characters.
func sanitizeSubject(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s) && len(out) < maxSubjectLen; i++ {
		c := s[i]
		switch {
		case c == '\n' || c == '\r' || c == '\t':
			out = append(out, ' ')
		case c < 0x20 || c > 0x7e:
			continue
		default:
			out = append(out, c)
		}
	}
	return string(out)
}

// LogPublisher writes alerts to the log instead of a topic.
type LogPublisher struct {
	log logger.Logger
}

// NewLogPublisher creates a publisher backed by log.
func NewLogPublisher(log logger.Logger) *LogPublisher {
	return &LogPublisher{log: log}
}

// Publish implements Publisher.
func (p *LogPublisher) Publish(ctx context.Context, topic, message, subject string) error {
	p.log.Warn(ctx, "alert",
		logger.String("topic", topic),
		logger.String("subject", subject),
		logger.String("message", message),
	)
	return nil
}
