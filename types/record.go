package types

import (
	"time"
)

// RawRecord is one extracted record with the tap's bookkeeping columns
type RawRecord struct {
	OlakeID        string         `parquet:"_olake_id"`
	Data           map[string]any `parquet:"-"`
	OlakeTimestamp time.Time      `parquet:"_olake_timestamp,timestamp(microsecond)"`
	OperationType  string         `parquet:"_op_type"`
}

func CreateRawRecord(olakeID string, data map[string]any, operationType string, extracted time.Time) RawRecord {
	return RawRecord{
		OlakeID:        olakeID,
		Data:           data,
		OlakeTimestamp: extracted,
		OperationType:  operationType,
	}
}

// StreamContext carries the parent identifiers a child stream is requested with
type StreamContext map[string]any
