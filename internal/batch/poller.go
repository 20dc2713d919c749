package batch

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go/aws"
	"github.com/pkg/errors"
)

var NoErrEmptyBatches = errors.New("batches are empty")

type Poller interface {
	Poll(ctx context.Context) (handle string, b Batch, err error)
	MarkAsDone(ctx context.Context, handle string) (err error)
}

type poller struct {
	client   *sqs.Client
	queueURL string
}

var _ Poller = (*poller)(nil)

func NewPoller(sqs *sqs.Client, queueURL string) *poller {
	return &poller{
		client:   sqs,
		queueURL: queueURL,
	}
}

func (p *poller) Poll(ctx context.Context) (handle string, b Batch, err error) {
	input := &sqs.ReceiveMessageInput{QueueUrl: aws.String(p.queueURL)}

	result, err := p.client.ReceiveMessage(ctx, input)
	if err != nil {
		return "", Batch{}, errors.Wrap(err, "receiving message")
	}

	if len(result.Messages) == 0 {
		return "", Batch{}, NoErrEmptyBatches
	}

	msg := result.Messages[0]

	decoded, err := Decode([]byte(*msg.Body))
	if err != nil {
		return "", Batch{}, errors.Wrap(err, "decoding batch")
	}

	return *msg.ReceiptHandle, decoded, nil
}

func (p *poller) MarkAsDone(ctx context.Context, handle string) (err error) {
	input := &sqs.DeleteMessageInput{
		QueueUrl:      aws.String(p.queueURL),
		ReceiptHandle: aws.String(handle),
	}

	if _, err = p.client.DeleteMessage(ctx, input); err != nil {
		return errors.Wrap(err, "failed to delete message")
	}

	return nil
}
