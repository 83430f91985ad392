package ingest

import "time"

// InitializeMessage is the JSON body of an "init" record.
type InitializeMessage struct {
	Timestamp *time.Time `json:"timestamp,omitempty"`
	Key       string     `json:"key"`
}

// TransactionMessage is the JSON body of a "txn" record.
type TransactionMessage struct {
	Timestamp     *time.Time `json:"timestamp,omitempty"`
	AssetRef      string     `json:"assetRef,omitempty"`
	Contents      string     `json:"contents"`
	UserSignature string     `json:"userSignature"`
}

func (m InitializeMessage) timestampOr(now time.Time) time.Time {
	if m.Timestamp == nil {
		return now
	}
	return *m.Timestamp
}

func (m TransactionMessage) timestampOr(now time.Time) time.Time {
	if m.Timestamp == nil {
		return now
	}
	return *m.Timestamp
}
