package worker

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/rs/zerolog/log"

	"payroll.service/pkg/logger"
	"payroll.service/pkg/telemetry"
)

// SQSClient is the slice of the AWS SQS API the worker uses.
type SQSClient interface {
	ReceiveMessage(ctx context.Context, params *sqs.ReceiveMessageInput, optFns ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error)
	DeleteMessage(ctx context.Context, params *sqs.DeleteMessageInput, optFns ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error)
	ChangeMessageVisibility(ctx context.Context, params *sqs.ChangeMessageVisibilityInput, optFns ...func(*sqs.Options)) (*sqs.ChangeMessageVisibilityOutput, error)
}

// Processor handles a single queue message. It reports whether the
// message should be retried and after what visibility delay.
type Processor interface {
	Process(ctx context.Context, msg types.Message) (shouldRetry bool, retryDelay int32, err error)
}

// Worker is a generic SQS consumer: it long-polls a queue and fans
// messages out to a pool of processor goroutines.
type Worker struct {
	client    SQSClient
	queueURL  string
	processor Processor
	// Concurrency is the size of the processor pool.
	Concurrency int
}

// NewWorker creates a worker for one queue, ready to be started.
func NewWorker(client SQSClient, queueURL string, processor Processor) *Worker {
	return &Worker{
		client:      client,
		queueURL:    queueURL,
		processor:   processor,
		Concurrency: 10,
	}
}

// Start runs the poll loop until the context is canceled.
func (w *Worker) Start(ctx context.Context) {
	log.Info().Int("concurrency", w.Concurrency).Str("queue", w.queueURL).Msg("SQS worker started")

	messages := make(chan types.Message, w.Concurrency)
	for i := 0; i < w.Concurrency; i++ {
		go w.consume(ctx, messages)
	}
	w.poll(ctx, messages)
}

func (w *Worker) poll(ctx context.Context, messages chan<- types.Message) {
	defer close(messages)

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("Poller shutting down")
			return
		default:
			output, err := w.client.ReceiveMessage(ctx, &sqs.ReceiveMessageInput{
				QueueUrl:              &w.queueURL,
				MaxNumberOfMessages:   int32(w.Concurrency),
				WaitTimeSeconds:       20,
				MessageAttributeNames: []string{"All"},
			})
			if err != nil {
				log.Error().Err(err).Msg("Error receiving messages")
				continue
			}
			for _, msg := range output.Messages {
				messages <- msg
			}
		}
	}
}

func (w *Worker) consume(ctx context.Context, messages <-chan types.Message) {
	for msg := range messages {
		w.handle(ctx, msg)
	}
}

// handle processes one message and then either deletes it or extends
// its visibility timeout so the queue redelivers it later.
func (w *Worker) handle(ctx context.Context, msg types.Message) {
	ctx, span := telemetry.StartSpanFromSQSMessage(ctx, msg)
	defer span.End()

	ctx = logger.EnrichContextWithLogger(ctx)

	shouldRetry, retryDelay, err := w.processor.Process(ctx, msg)
	if err != nil && shouldRetry {
		log.Ctx(ctx).Warn().Err(err).Int32("retry_delay", retryDelay).Msg("Processing failed, will retry")
		_, _ = w.client.ChangeMessageVisibility(ctx, &sqs.ChangeMessageVisibilityInput{
			QueueUrl:          &w.queueURL,
			ReceiptHandle:     msg.ReceiptHandle,
			VisibilityTimeout: retryDelay,
		})
		return
	}

	if err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("Unrecoverable error processing message, dropping")
		return
	}

	_, _ = w.client.DeleteMessage(ctx, &sqs.DeleteMessageInput{
		QueueUrl:      &w.queueURL,
		ReceiptHandle: msg.ReceiptHandle,
	})
}
