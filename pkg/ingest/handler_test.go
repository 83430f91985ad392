package ingest

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/base64"
	"log"
	"os"
	"testing"

	"github.com/ledgerforge/trail/internal/objectstore"
	"github.com/ledgerforge/trail/internal/trailerr"
	"github.com/ledgerforge/trail/pkg/owner"
	"github.com/ledgerforge/trail/pkg/trail"
)

func testKeyDER(t *testing.T) string {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	return base64.StdEncoding.EncodeToString(x509.MarshalPKCS1PrivateKey(key))
}

func testLogger() *log.Logger {
	return log.New(os.Stderr, "[ingest-test] ", 0)
}

func strPtr(s string) *string { return &s }

func TestHandle_InitThenTxnEndToEnd(t *testing.T) {
	ctx := context.Background()
	store := objectstore.NewMemoryStore()
	svc := trail.NewService(store)
	h := NewHandler(svc, testLogger())

	initBody := `{"key":"` + testKeyDER(t) + `"}`
	initBatch := Batch{Records: []Record{
		{Body: strPtr(initBody), MessageID: "m1", Attributes: map[string]string{"MessageGroupId": "init:prov1"}},
	}}
	if err := h.Handle(ctx, initBatch); err != nil {
		t.Fatalf("init batch: %v", err)
	}

	txnBody := `{"assetRef":"","contents":"AA==","userSignature":"AA=="}`
	txnBatch := Batch{Records: []Record{
		{Body: strPtr(txnBody), MessageID: "m2", Attributes: map[string]string{"MessageGroupId": "txn:prov1:addrA"}},
	}}
	if err := h.Handle(ctx, txnBatch); err != nil {
		t.Fatalf("txn batch: %v", err)
	}

	meta, _, err := trail.GetMetadata(ctx, store, owner.NewAddress("prov1", "addrA"))
	if err != nil {
		t.Fatalf("get metadata: %v", err)
	}
	if len(meta.Blocks) != 1 {
		t.Fatalf("expected exactly one block written, got %d", len(meta.Blocks))
	}
}

func TestHandle_UnknownGroupPrefixFailsMalformed(t *testing.T) {
	ctx := context.Background()
	store := objectstore.NewMemoryStore()
	svc := trail.NewService(store)
	h := NewHandler(svc, testLogger())

	batch := Batch{Records: []Record{
		{Body: strPtr(`{}`), MessageID: "m1", Attributes: map[string]string{"MessageGroupId": "bogus:prov1"}},
	}}
	err := h.Handle(ctx, batch)
	if err == nil {
		t.Fatalf("expected an error for an unrecognized group prefix")
	}
	if !trailerr.Is(err, trailerr.KindMalformed) {
		t.Errorf("expected a malformed-input error, got %v", err)
	}
}

func TestHandle_MissingMessageGroupIdFailsMalformed(t *testing.T) {
	ctx := context.Background()
	store := objectstore.NewMemoryStore()
	svc := trail.NewService(store)
	h := NewHandler(svc, testLogger())

	batch := Batch{Records: []Record{
		{Body: strPtr(`{}`), MessageID: "m1", Attributes: map[string]string{}},
	}}
	err := h.Handle(ctx, batch)
	if !trailerr.Is(err, trailerr.KindMalformed) {
		t.Errorf("expected a malformed-input error, got %v", err)
	}
}

func TestHandle_EmptyBatchFailsMalformed(t *testing.T) {
	ctx := context.Background()
	store := objectstore.NewMemoryStore()
	svc := trail.NewService(store)
	h := NewHandler(svc, testLogger())

	if err := h.Handle(ctx, Batch{}); !trailerr.Is(err, trailerr.KindMalformed) {
		t.Errorf("expected a malformed-input error for an empty batch, got %v", err)
	}
}

func TestHandle_WriteBlockWithoutInitializedProviderFails(t *testing.T) {
	ctx := context.Background()
	store := objectstore.NewMemoryStore()
	svc := trail.NewService(store)
	h := NewHandler(svc, testLogger())

	txnBody := `{"contents":"AA==","userSignature":"AA=="}`
	batch := Batch{Records: []Record{
		{Body: strPtr(txnBody), MessageID: "m1", Attributes: map[string]string{"MessageGroupId": "txn:prov9:addrZ"}},
	}}
	err := h.Handle(ctx, batch)
	if !trailerr.Is(err, trailerr.KindStateMissing) {
		t.Errorf("expected a state-missing error, got %v", err)
	}
}

func TestHandle_SkipsNilBodyRecords(t *testing.T) {
	ctx := context.Background()
	store := objectstore.NewMemoryStore()
	svc := trail.NewService(store)
	h := NewHandler(svc, testLogger())

	initBody := `{"key":"` + testKeyDER(t) + `"}`
	batch := Batch{Records: []Record{
		{Body: nil, MessageID: "m1", Attributes: map[string]string{"MessageGroupId": "init:prov1"}},
		{Body: strPtr(initBody), MessageID: "m2", Attributes: map[string]string{"MessageGroupId": "init:prov1"}},
	}}
	if err := h.Handle(ctx, batch); err != nil {
		t.Fatalf("expected nil-body record to be skipped, not fail the batch: %v", err)
	}
}
