package sns

import (
	"context"
	"fmt"

	"github.com/VaishnavKrishnanP/EchoSpace/internal/config"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sns"
)

// AnomalyReporter publishes data-consistency anomalies found during sweeps
// to an operator-facing SNS topic.
type AnomalyReporter interface {
	ReportDanglingOwner(ctx context.Context, spaceID, userID string) error
}

type reporter struct {
	client   *sns.Client
	topicARN string
}

func NewReporter(cfg *config.Config) (AnomalyReporter, error) {
	if cfg.SNSAnomalyTopicARN == "" {
		return nil, fmt.Errorf("SNS_ANOMALY_TOPIC_ARN not set")
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithRegion(cfg.SNSRegion),
	)
	if err != nil {
		return nil, err
	}
	return &reporter{client: sns.NewFromConfig(awsCfg), topicARN: cfg.SNSAnomalyTopicARN}, nil
}

func (r *reporter) ReportDanglingOwner(ctx context.Context, spaceID, userID string) error {
	subject := "EchoSpace sweep anomaly: dangling owner reference"
	message := fmt.Sprintf("expired space %s references account %s, which does not exist", spaceID, userID)
	_, err := r.client.Publish(ctx, &sns.PublishInput{
		TopicArn: &r.topicARN,
		Subject:  &subject,
		Message:  &message,
	})
	return err
}
