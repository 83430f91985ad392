package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/ledgerforge/trail/internal/trailerr"
	"github.com/ledgerforge/trail/pkg/owner"
	"github.com/ledgerforge/trail/pkg/trail"
)

// Handler routes one batch to the trail service, per the MessageGroupId on
// its first record.
type Handler struct {
	service *trail.Service
	logger  *log.Logger
}

// NewHandler constructs a Handler over service, logging skipped/failed
// records through logger.
func NewHandler(service *trail.Service, logger *log.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Handle dispatches batch to InitializeProvider (for an "init" group) or
// WriteBlock (for a "txn" group, called once for the whole batch).
func (h *Handler) Handle(ctx context.Context, batch Batch) error {
	if len(batch.Records) == 0 {
		return trailerr.New(trailerr.KindMalformed, "ingest.handle", fmt.Errorf("batch has no records"))
	}

	groupID, ok := batch.Records[0].Attributes["MessageGroupId"]
	if !ok || groupID == "" {
		return trailerr.New(trailerr.KindMalformed, "ingest.handle", fmt.Errorf("missing MessageGroupId on first record"))
	}
	group, err := ParseMsgGroup(groupID)
	if err != nil {
		return trailerr.New(trailerr.KindMalformed, "ingest.handle", err)
	}

	switch group.Type {
	case TypeInit:
		return h.handleInit(ctx, group.ID, batch.Records)
	case TypeTxn:
		return h.handleTxn(ctx, group.ID, batch.Records)
	default:
		return trailerr.New(trailerr.KindMalformed, "ingest.handle", fmt.Errorf("unhandled group type"))
	}
}

func (h *Handler) handleInit(ctx context.Context, provider string, records []Record) error {
	now := time.Now().UTC()
	for _, rec := range records {
		if rec.Body == nil {
			h.logger.Printf("skipping init record %s: empty body", rec.MessageID)
			continue
		}
		var msg InitializeMessage
		if err := json.Unmarshal([]byte(*rec.Body), &msg); err != nil {
			return trailerr.New(trailerr.KindMalformed, "ingest.handle_init", err)
		}
		if err := h.service.InitializeProvider(ctx, provider, msg.Key, msg.timestampOr(now)); err != nil {
			return err
		}
	}
	return nil
}

func (h *Handler) handleTxn(ctx context.Context, subject string, records []Record) error {
	who, err := owner.ParseSubject(subject)
	if err != nil {
		return trailerr.New(trailerr.KindMalformed, "ingest.handle_txn", err)
	}

	now := time.Now().UTC()
	sources := make([]trail.TransactionSource, 0, len(records))
	for _, rec := range records {
		if rec.Body == nil {
			h.logger.Printf("skipping txn record %s: empty body", rec.MessageID)
			continue
		}
		var msg TransactionMessage
		if err := json.Unmarshal([]byte(*rec.Body), &msg); err != nil {
			return trailerr.New(trailerr.KindMalformed, "ingest.handle_txn", err)
		}
		sources = append(sources, trail.TransactionSource{
			Timestamp:     msg.timestampOr(now),
			AssetRef:      msg.AssetRef,
			Contents:      msg.Contents,
			UserSignature: msg.UserSignature,
		})
	}
	if len(sources) == 0 {
		return nil
	}
	_, err = h.service.WriteBlock(ctx, who, sources)
	return err
}
