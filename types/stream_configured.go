package types

import (
	"fmt"
)

// Input/Processed object for Stream
type ConfiguredStream struct {
	Stream *Stream `json:"stream,omitempty"`

	// Column that's being used as bookmark; MUST NOT BE mutated
	CursorField string `json:"cursor_field,omitempty"`
}

func (s *ConfiguredStream) ID() string {
	return s.Stream.ID()
}

func (s *ConfiguredStream) Self() *ConfiguredStream {
	return s
}

func (s *ConfiguredStream) Name() string {
	return s.Stream.Name
}

func (s *ConfiguredStream) GetStream() *Stream {
	return s.Stream
}

func (s *ConfiguredStream) Namespace() string {
	return s.Stream.Namespace
}

func (s *ConfiguredStream) Schema() *TypeSchema {
	return s.Stream.Schema
}

func (s *ConfiguredStream) SupportedSyncModes() *Set[SyncMode] {
	return s.Stream.SupportedSyncModes
}

func (s *ConfiguredStream) GetSyncMode() SyncMode {
	return s.Stream.SyncMode
}

// Cursor returns the replication key, empty for full refresh streams
func (s *ConfiguredStream) Cursor() string {
	if s.Stream.SyncMode != INCREMENTAL {
		return ""
	}
	if s.CursorField != "" {
		return s.CursorField
	}

	return s.Stream.SelectedCursorField()
}

// Validate Configured Stream with Source Stream
func (s *ConfiguredStream) Validate(source *Stream) error {
	if !source.SupportedSyncModes.Exists(s.Stream.SyncMode) {
		return fmt.Errorf("invalid sync mode[%s]; valid are %v", s.Stream.SyncMode, source.SupportedSyncModes)
	}

	if s.Stream.SyncMode == INCREMENTAL && !source.AvailableCursorFields.Exists(s.Cursor()) {
		return fmt.Errorf("invalid cursor field [%s]; valid are %v", s.Cursor(), source.AvailableCursorFields)
	}

	if s.Stream.SourceDefinedPrimaryKey != nil && source.SourceDefinedPrimaryKey.ProperSubsetOf(s.Stream.SourceDefinedPrimaryKey) {
		return fmt.Errorf("differnce found with primary keys: %v", source.SourceDefinedPrimaryKey.Difference(s.Stream.SourceDefinedPrimaryKey).Array())
	}

	return nil
}

// Reconcile carries the source-owned attributes into the configured copy, the
// catalog only decides selection, sync mode and cursor
func (s *ConfiguredStream) Reconcile(source *Stream) {
	s.Stream.Schema = source.Schema
	s.Stream.SupportedSyncModes = source.SupportedSyncModes
	s.Stream.SourceDefinedPrimaryKey = source.SourceDefinedPrimaryKey
	s.Stream.AvailableCursorFields = source.AvailableCursorFields
	s.Stream.ParentStream = source.ParentStream
	s.Stream.ParentContext = source.ParentContext
}
