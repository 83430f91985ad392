// Command trail-writer is the process entrypoint for the trail engine: an
// AWS Lambda handler over a FIFO-delivered batch of initialize/transaction
// messages, with a -local flag for running one batch from disk.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/google/uuid"

	"github.com/ledgerforge/trail/internal/config"
	"github.com/ledgerforge/trail/internal/logging"
	"github.com/ledgerforge/trail/internal/objectstore"
	"github.com/ledgerforge/trail/pkg/ingest"
	"github.com/ledgerforge/trail/pkg/trail"
)

// localRecord mirrors ingest.Record in a form that round-trips through
// JSON for -local smoke-testing.
type localRecord struct {
	Body       *string           `json:"body"`
	MessageID  string            `json:"messageId"`
	Attributes map[string]string `json:"attributes"`
}

type localBatch struct {
	Records []localRecord `json:"records"`
}

func main() {
	localFile := flag.String("local", "", "run a single batch read from this JSON file instead of starting the Lambda runtime")
	flag.Parse()

	logger := logging.New("trail-writer")

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("config: %v", err)
	}

	ctx := context.Background()
	store, err := objectstore.NewS3Store(ctx, cfg.Region, cfg.Bucket)
	if err != nil {
		logger.Fatalf("object store: %v", err)
	}

	service := trail.NewService(store)

	if *localFile != "" {
		if err := runLocal(ctx, service, logger, *localFile); err != nil {
			logger.Fatalf("local run: %v", err)
		}
		return
	}

	lambda.Start(ingest.NewLambdaHandler(service, logger))
}

func runLocal(ctx context.Context, service *trail.Service, logger *log.Logger, path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	var lb localBatch
	if err := json.Unmarshal(raw, &lb); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}

	event := events.SQSEvent{Records: make([]events.SQSMessage, 0, len(lb.Records))}
	for _, r := range lb.Records {
		var body string
		if r.Body != nil {
			body = *r.Body
		}
		// A hand-written local fixture is not required to assign message
		// ids; a live queue always does, so synthesize one here the same
		// way SQS itself would.
		messageID := r.MessageID
		if messageID == "" {
			messageID = uuid.NewString()
		}
		event.Records = append(event.Records, events.SQSMessage{
			Body:       body,
			MessageId:  messageID,
			Attributes: r.Attributes,
		})
	}

	handler := ingest.NewLambdaHandler(service, logger)
	if err := handler(ctx, event); err != nil {
		return err
	}
	logger.Printf("local batch %s processed successfully", path)
	return nil
}
