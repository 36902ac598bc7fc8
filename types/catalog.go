package types

import (
	"time"
)

// Message is a dto for tap output row representation
type Message struct {
	Type             MessageType    `json:"type"`
	Log              *Log           `json:"log,omitempty"`
	ConnectionStatus *StatusRow     `json:"connectionStatus,omitempty"`
	State            *State         `json:"state,omitempty"`
	Catalog          *Catalog       `json:"catalog,omitempty"`
	Spec             map[string]any `json:"spec,omitempty"`

	// record and schema messages
	Stream             string         `json:"stream,omitempty"`
	Record             map[string]any `json:"record,omitempty"`
	Schema             map[string]any `json:"schema,omitempty"`
	KeyProperties      []string       `json:"key_properties,omitempty"`
	BookmarkProperties []string       `json:"bookmark_properties,omitempty"`
	TimeExtracted      *time.Time     `json:"time_extracted,omitempty"`
}

type Log struct {
	Level   string `json:"level,omitempty"`
	Message string `json:"message,omitempty"`
}

type StatusRow struct {
	Status  ConnectionStatus `json:"status,omitempty"`
	Message string           `json:"message,omitempty"`
}

type StreamMetadata struct {
	StreamName string `json:"stream_name"`
}

// Catalog is a dto for the formatted streams file
type Catalog struct {
	SelectedStreams map[string][]StreamMetadata `json:"selected_streams,omitempty"`
	Streams         []*ConfiguredStream         `json:"streams,omitempty"`
}

// GetWrappedCatalog wraps discovered streams and selects all of them
func GetWrappedCatalog(streams []*Stream) *Catalog {
	catalog := &Catalog{
		SelectedStreams: make(map[string][]StreamMetadata),
		Streams:         []*ConfiguredStream{},
	}

	for _, stream := range streams {
		catalog.Streams = append(catalog.Streams, stream.Wrap())
		catalog.SelectedStreams[stream.Namespace] = append(catalog.SelectedStreams[stream.Namespace], StreamMetadata{
			StreamName: stream.Name,
		})
	}

	return catalog
}

// NewSchemaMessage builds the message announcing a stream's schema
func NewSchemaMessage(stream StreamInterface) Message {
	message := Message{
		Type:          SchemaMessage,
		Stream:        stream.Name(),
		Schema:        stream.Schema().ToJSONSchema(),
		KeyProperties: stream.GetStream().SourceDefinedPrimaryKey.Array(),
	}
	if cursor := stream.Cursor(); cursor != "" {
		message.BookmarkProperties = []string{cursor}
	}

	return message
}

// NewRecordMessage builds the message carrying one extracted record
func NewRecordMessage(stream string, record map[string]any, extracted time.Time) Message {
	return Message{
		Type:          RecordMessage,
		Stream:        stream,
		Record:        record,
		TimeExtracted: &extracted,
	}
}
