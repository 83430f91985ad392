package ingest

import (
	"context"
	"log"

	"github.com/aws/aws-lambda-go/events"
	"github.com/ledgerforge/trail/pkg/trail"
)

// NewLambdaHandler adapts a Handler into the function shape lambda.Start
// expects, converting an SQS event into this package's transport-agnostic
// Batch before dispatching.
func NewLambdaHandler(service *trail.Service, logger *log.Logger) func(context.Context, events.SQSEvent) error {
	h := NewHandler(service, logger)
	return func(ctx context.Context, event events.SQSEvent) error {
		return h.Handle(ctx, batchFromSQSEvent(event))
	}
}

func batchFromSQSEvent(event events.SQSEvent) Batch {
	records := make([]Record, 0, len(event.Records))
	for _, msg := range event.Records {
		var body *string
		if msg.Body != "" {
			b := msg.Body
			body = &b
		}
		records = append(records, Record{
			Body:       body,
			MessageID:  msg.MessageId,
			Attributes: msg.Attributes,
		})
	}
	return Batch{Records: records}
}
