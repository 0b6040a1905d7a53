package reminder

import (
	"context"

	"realty-crm/internal/config"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sns/types"
	"go.uber.org/zap"
)

// Sender delivers one SMS and returns the provider's message id
type Sender interface {
	Send(ctx context.Context, phoneNumber, message string) (string, error)
}

// SNSPublisher is the part of the SNS client the sender uses
type SNSPublisher interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

type SNSSender struct {
	client   SNSPublisher
	senderID string
	logger   *zap.Logger
}

func NewSNSSender(client SNSPublisher, senderID string, logger *zap.Logger) *SNSSender {
	return &SNSSender{client: client, senderID: senderID, logger: logger}
}

// Send publishes a transactional SMS. The number must be E.164.
func (s *SNSSender) Send(ctx context.Context, phoneNumber, message string) (string, error) {
	attrs := map[string]types.MessageAttributeValue{
		"AWS.SNS.SMS.SMSType": {
			DataType:    aws.String("String"),
			StringValue: aws.String("Transactional"),
		},
	}
	if s.senderID != "" {
		attrs["AWS.SNS.SMS.SenderID"] = types.MessageAttributeValue{
			DataType:    aws.String("String"),
			StringValue: aws.String(s.senderID),
		}
	}

	out, err := s.client.Publish(ctx, &sns.PublishInput{
		Message:           aws.String(message),
		PhoneNumber:       aws.String(phoneNumber),
		MessageAttributes: attrs,
	})
	if err != nil {
		return "", err
	}

	id := aws.ToString(out.MessageId)
	s.logger.Info("SMS sent", zap.String("messageId", id))
	return id, nil
}

// LogSender only logs. Used when no AWS region is configured.
type LogSender struct {
	logger *zap.Logger
}

func (s *LogSender) Send(ctx context.Context, phoneNumber, message string) (string, error) {
	s.logger.Info("SMS delivery disabled, message logged only",
		zap.String("to", phoneNumber),
		zap.Int("length", len(message)))
	return "", nil
}

func NewSender(cfg *config.Config, logger *zap.Logger) (Sender, error) {
	if cfg.AWSRegion == "" {
		return &LogSender{logger: logger}, nil
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(), awsconfig.WithRegion(cfg.AWSRegion))
	if err != nil {
		return nil, err
	}
	return NewSNSSender(sns.NewFromConfig(awsCfg), cfg.SMSSenderID, logger), nil
}
