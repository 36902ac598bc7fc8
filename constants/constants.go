package constants

import (
	"errors"
	"time"
)

const (
	ParquetFileExt = "parquet"
	OlakeID        = "_olake_id"
	OlakeTimestamp = "_olake_timestamp"
	OpType         = "_op_type"

	// viper keys
	ConfigFolder = "CONFIG_FOLDER"
	StatePath    = "STATE_PATH"
	StreamsPath  = "STREAMS_PATH"
	LogLevel     = "LOG_LEVEL"
	NoSave       = "NO_SAVE"

	EnvPrefix = "TAP_GREENHOUSE"

	DefaultNamespace = "greenhouse"
	// Harvest enforces a per-page ceiling of 500
	DefaultPageSize   = 500
	PageSizeParam     = "per_page"
	DefaultMaxRetries = 3
	DefaultBatchSize  = 10000
	DefaultRetryDelay = 2 * time.Second

	TokenURL  = "https://auth.greenhouse.io/token"
	HarvestV1 = "https://harvest.greenhouse.io/v1"
	HarvestV3 = "https://harvest.greenhouse.io/v3"
)

type DriverType string

const (
	Greenhouse DriverType = "greenhouse"
)

var (
	ErrNonRetryable = errors.New("non-retryable error")
	ErrNoStreams    = errors.New("no valid streams found in catalog")
)
