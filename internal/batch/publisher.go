package batch

import (
	"context"
	"encoding/json"

	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go/aws"
	"github.com/pkg/errors"
)

type Publisher interface {
	Publish(ctx context.Context, b Batch) error
}

type SQSPublisher struct {
	client   *sqs.Client
	queueURL string
}

var (
	_ Publisher = (*SQSPublisher)(nil)
)

func NewSQSPublisher(client *sqs.Client, queueURL string) *SQSPublisher {
	return &SQSPublisher{
		client:   client,
		queueURL: queueURL,
	}
}

func (p *SQSPublisher) Publish(ctx context.Context, b Batch) error {
	payload, err := json.Marshal(b)
	if err != nil {
		return errors.Wrap(err, "marshalling payload")
	}

	input := &sqs.SendMessageInput{
		QueueUrl:    aws.String(p.queueURL),
		MessageBody: aws.String(string(payload)),
	}

	if _, err := p.client.SendMessage(ctx, input); err != nil {
		return errors.Wrap(err, "sending message")
	}

	return nil
}
