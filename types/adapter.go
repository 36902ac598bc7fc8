package types

type DestinationType string

const (
	Stdout  DestinationType = "STDOUT"
	Parquet DestinationType = "PARQUET"
)

type WriterConfig struct {
	Type         DestinationType `json:"type"`
	WriterConfig any             `json:"writer"`
	BatchSize    int64           `json:"batch_size,omitempty"`
}
