package types

import (
	"fmt"

	"github.com/datazip-inc/greenhouse-tap/utils"
	"github.com/datazip-inc/greenhouse-tap/utils/logger"
)

type SyncMode string

const (
	FULLREFRESH SyncMode = "full_refresh"
	INCREMENTAL SyncMode = "incremental"
)

// Stream describes one Harvest resource and how it is extracted
type Stream struct {
	// Name of the Stream
	Name string `json:"name,omitempty"`
	// Namespace of the Stream, greenhouse for every resource
	Namespace string `json:"namespace,omitempty"`
	// Possible Schema of the Stream
	Schema *TypeSchema `json:"type_schema,omitempty"`
	// Supported sync modes from driver for the respective Stream
	SupportedSyncModes *Set[SyncMode] `json:"supported_sync_modes,omitempty"`
	// Primary keys of the records in the Stream
	SourceDefinedPrimaryKey *Set[string] `json:"source_defined_primary_key,omitempty"`
	// Replication keys usable as bookmark
	AvailableCursorFields *Set[string] `json:"available_cursor_fields,omitempty"`
	// Selected sync mode
	SyncMode SyncMode `json:"sync_mode,omitempty"`
	// Selected bookmark field
	CursorField string `json:"cursor_field,omitempty"`
	// Name of the parent stream, set for child streams only
	ParentStream string `json:"parent_stream,omitempty"`
	// Maps a child context key to the parent record field it is read from
	ParentContext map[string]string `json:"parent_context,omitempty"`
}

func NewStream(name, namespace string, schema *TypeSchema) *Stream {
	if schema == nil {
		schema = NewTypeSchema()
	}

	return &Stream{
		Name:                    name,
		Namespace:               namespace,
		Schema:                  schema,
		SupportedSyncModes:      NewSet[SyncMode](),
		SourceDefinedPrimaryKey: NewSet[string](),
		AvailableCursorFields:   NewSet[string](),
	}
}

func (s *Stream) ID() string {
	return fmt.Sprintf("%s.%s", s.Namespace, s.Name)
}

func (s *Stream) WithSyncMode(modes ...SyncMode) *Stream {
	for _, mode := range modes {
		s.SupportedSyncModes.Insert(mode)
	}

	return s
}

func (s *Stream) WithPrimaryKey(keys ...string) *Stream {
	for _, key := range keys {
		s.SourceDefinedPrimaryKey.Insert(key)
	}

	return s
}

func (s *Stream) WithCursorField(columns ...string) *Stream {
	for _, column := range columns {
		s.AvailableCursorFields.Insert(column)
	}

	return s
}

func (s *Stream) WithParent(parent string, context map[string]string) *Stream {
	s.ParentStream = parent
	s.ParentContext = context

	return s
}

// UpsertField adds the column to the schema, marking it nullable when asked
func (s *Stream) UpsertField(column string, typ DataType, nullable bool) {
	types := []DataType{typ}
	if nullable {
		types = append(types, Null)
	}

	s.Schema.AddTypes(column, types...)
}

// IsChild reports whether records of this stream are fetched per parent record
func (s *Stream) IsChild() bool {
	return s.ParentStream != ""
}

func (s *Stream) Wrap() *ConfiguredStream {
	return &ConfiguredStream{
		Stream:      s,
		CursorField: s.CursorField,
	}
}

func StreamsToMap(streams ...*Stream) map[string]*Stream {
	output := make(map[string]*Stream)
	for _, stream := range streams {
		output[stream.ID()] = stream
	}

	return output
}

// LogCatalog prints the discovered catalog on stdout and persists it as streams.json
func LogCatalog(streams []*Stream) {
	message := Message{
		Type:    CatalogMessage,
		Catalog: GetWrappedCatalog(streams),
	}
	logger.Output(message)

	if err := logger.FileLogger(message.Catalog, "streams", ".json"); err != nil {
		logger.Fatalf("failed to create streams file: %s", err)
	}
}

// SelectedCursorField returns the replication key in effect for the stream
func (s *Stream) SelectedCursorField() string {
	if s.SyncMode != INCREMENTAL {
		return ""
	}

	return utils.Ternary(s.CursorField != "", s.CursorField, firstOrEmpty(s.AvailableCursorFields)).(string)
}

func firstOrEmpty(set *Set[string]) string {
	if set == nil || set.Len() == 0 {
		return ""
	}

	return set.Array()[0]
}
