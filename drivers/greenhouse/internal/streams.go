package driver

import (
	_ "embed"
	"fmt"
	"sort"
	"strings"

	"github.com/datazip-inc/greenhouse-tap/constants"
	"github.com/datazip-inc/greenhouse-tap/types"
	"sigs.k8s.io/yaml"
)

//go:embed streams.yaml
var manifestYAML []byte

// StreamSpec is one manifest entry, fields left empty inherit from defaults
type StreamSpec struct {
	Name             string            `json:"name"`
	Path             string            `json:"path"`
	PrimaryKeys      []string          `json:"primary_keys,omitempty"`
	ReplicationKey   string            `json:"replication_key,omitempty"`
	IncrementalParam string            `json:"incremental_param,omitempty"`
	Parent           string            `json:"parent,omitempty"`
	Context          map[string]string `json:"context,omitempty"`
	Properties       map[string]string `json:"properties"`
}

type Manifest struct {
	Defaults StreamSpec    `json:"defaults"`
	Streams  []*StreamSpec `json:"streams"`
}

// LoadManifest parses a stream manifest, applies shared defaults and checks
// that every entry is usable
func LoadManifest(data []byte) (*Manifest, error) {
	manifest := &Manifest{}
	if err := yaml.UnmarshalStrict(data, manifest); err != nil {
		return nil, fmt.Errorf("failed to parse stream manifest: %s", err)
	}

	names := make(map[string]*StreamSpec, len(manifest.Streams))
	for _, spec := range manifest.Streams {
		if spec.Name == "" || spec.Path == "" {
			return nil, fmt.Errorf("stream manifest entry requires name and path: %+v", spec)
		}
		if _, dup := names[spec.Name]; dup {
			return nil, fmt.Errorf("stream[%s] declared twice", spec.Name)
		}
		names[spec.Name] = spec

		if len(spec.PrimaryKeys) == 0 {
			spec.PrimaryKeys = manifest.Defaults.PrimaryKeys
		}
		if spec.IncrementalParam == "" {
			spec.IncrementalParam = manifest.Defaults.IncrementalParam
		}
		for _, key := range spec.PrimaryKeys {
			if _, found := spec.Properties[key]; !found {
				return nil, fmt.Errorf("stream[%s] primary key %s missing from properties", spec.Name, key)
			}
		}
		for column, typ := range spec.Properties {
			if !types.DataType(typ).Valid() {
				return nil, fmt.Errorf("stream[%s] column %s has unknown type %s", spec.Name, column, typ)
			}
		}
		if spec.ReplicationKey != "" {
			if typ := spec.Properties[spec.ReplicationKey]; typ != string(types.Timestamp) {
				return nil, fmt.Errorf("stream[%s] replication key %s must be a timestamp", spec.Name, spec.ReplicationKey)
			}
		}
	}

	// children are validated once every parent is known
	for _, spec := range manifest.Streams {
		if spec.Parent == "" {
			if len(spec.Context) > 0 || strings.Contains(spec.Path, "{") {
				return nil, fmt.Errorf("stream[%s] uses a parent context without a parent", spec.Name)
			}
			continue
		}
		parent, found := names[spec.Parent]
		if !found {
			return nil, fmt.Errorf("stream[%s] has unknown parent %s", spec.Name, spec.Parent)
		}
		if parent.Parent != "" {
			return nil, fmt.Errorf("stream[%s] nests below child stream %s", spec.Name, parent.Name)
		}
		if spec.ReplicationKey != "" {
			return nil, fmt.Errorf("child stream[%s] can not be incremental", spec.Name)
		}
		if len(spec.Context) == 0 {
			return nil, fmt.Errorf("child stream[%s] declares no context", spec.Name)
		}
		for key, field := range spec.Context {
			if _, found := parent.Properties[field]; !found {
				return nil, fmt.Errorf("stream[%s] context %s reads unknown parent field %s", spec.Name, key, field)
			}
			if !strings.Contains(spec.Path, "{"+key+"}") {
				return nil, fmt.Errorf("stream[%s] path does not use context key %s", spec.Name, key)
			}
		}
	}

	return manifest, nil
}

// Get returns the entry for a stream name
func (m *Manifest) Get(name string) (*StreamSpec, bool) {
	for _, spec := range m.Streams {
		if spec.Name == name {
			return spec, true
		}
	}

	return nil, false
}

// Names keeps manifest order, which places parents before their children
func (m *Manifest) Names() []string {
	names := make([]string, 0, len(m.Streams))
	for _, spec := range m.Streams {
		names = append(names, spec.Name)
	}

	return names
}

// ToStream builds the discovered stream; primary key columns are required,
// every other column is nullable
func (s *StreamSpec) ToStream() *types.Stream {
	stream := types.NewStream(s.Name, constants.DefaultNamespace, nil)
	stream.WithPrimaryKey(s.PrimaryKeys...)
	stream.WithSyncMode(types.FULLREFRESH)
	if s.ReplicationKey != "" {
		stream.WithSyncMode(types.INCREMENTAL)
		stream.WithCursorField(s.ReplicationKey)
	}
	if s.Parent != "" {
		stream.WithParent(s.Parent, s.Context)
	}

	columns := make([]string, 0, len(s.Properties))
	for column := range s.Properties {
		columns = append(columns, column)
	}
	sort.Strings(columns)
	for _, column := range columns {
		stream.UpsertField(column, types.DataType(s.Properties[column]), !stream.SourceDefinedPrimaryKey.Exists(column))
	}

	return stream
}
