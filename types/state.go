package types

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/datazip-inc/greenhouse-tap/utils/logger"
	"github.com/goccy/go-json"
)

type StateType string

const (
	// StreamType keeps one bookmark per stream
	StreamType StateType = "STREAM"
)

// State is the bookmark store persisted between runs
type State struct {
	*sync.RWMutex `json:"-"`
	Type          StateType      `json:"type"`
	Streams       []*StreamState `json:"streams,omitempty"`
}

// StreamState holds the bookmark values of a single stream
type StreamState struct {
	HoldsValue atomic.Bool `json:"-"`

	Stream    string   `json:"stream"`
	Namespace string   `json:"namespace"`
	SyncMode  string   `json:"sync_mode"`
	State     sync.Map `json:"state"`
}

func NewState(typ StateType) *State {
	return &State{
		RWMutex: &sync.RWMutex{},
		Type:    typ,
		Streams: []*StreamState{},
	}
}

func (s *State) isZero() bool {
	return len(s.Streams) == 0
}

func (s *State) SetType(typ StateType) {
	s.Lock()
	defer s.Unlock()

	s.Type = typ
}

func (s *State) ResetStreams() {
	s.Lock()
	defer s.Unlock()

	s.Streams = []*StreamState{}
}

func (s *State) initStreamState(stream *ConfiguredStream) *StreamState {
	return &StreamState{
		Stream:    stream.Name(),
		Namespace: stream.Namespace(),
		SyncMode:  string(stream.GetSyncMode()),
		State:     sync.Map{},
	}
}

// lookup must be called with the lock held
func (s *State) lookup(stream *ConfiguredStream) (int, bool) {
	for idx, streamState := range s.Streams {
		if streamState.Namespace == stream.Namespace() && streamState.Stream == stream.Name() {
			return idx, true
		}
	}

	return -1, false
}

func (s *State) GetCursor(stream *ConfiguredStream, key string) any {
	s.RLock()
	defer s.RUnlock()

	if key == "" {
		return nil
	}

	index, found := s.lookup(stream)
	if !found {
		return nil
	}

	val, _ := s.Streams[index].State.Load(key)
	return val
}

// SetCursor stores the bookmark; Persist writes it out
func (s *State) SetCursor(stream *ConfiguredStream, key string, value any) {
	s.Lock()
	defer s.Unlock()

	if key == "" {
		return
	}

	index, found := s.lookup(stream)
	if found {
		s.Streams[index].State.Store(key, value)
		s.Streams[index].HoldsValue.Store(true)
	} else {
		newStream := s.initStreamState(stream)
		newStream.State.Store(key, value)
		newStream.HoldsValue.Store(true)
		s.Streams = append(s.Streams, newStream)
	}
}

// ResetCursor drops the stream's bookmark, the next run starts from start_date
func (s *State) ResetCursor(stream *ConfiguredStream) {
	s.Lock()
	defer s.Unlock()

	index, found := s.lookup(stream)
	if !found {
		return
	}

	if cursor := stream.Cursor(); cursor != "" {
		s.Streams[index].State.Delete(cursor)
	}

	holdsValue := false
	s.Streams[index].State.Range(func(_, _ any) bool {
		holdsValue = true
		return false
	})
	s.Streams[index].HoldsValue.Store(holdsValue)
}

// Persist writes the state to STATE_PATH
func (s *State) Persist() error {
	s.RLock()
	defer s.RUnlock()

	return s.LogState()
}

// LogState writes the state to STATE_PATH; callers hold the lock
func (s *State) LogState() error {
	if s.isZero() {
		logger.Info("state is empty")
	}

	return logger.LogState(s)
}

func (s *State) MarshalJSON() ([]byte, error) {
	if s.isZero() {
		return json.Marshal(nil)
	}

	type Alias State
	p := Alias(*s)

	populatedStreams := []*StreamState{}
	for _, stream := range p.Streams {
		if stream.HoldsValue.Load() {
			populatedStreams = append(populatedStreams, stream)
		}
	}

	p.Streams = populatedStreams
	return json.Marshal(p)
}

func (s *State) UnmarshalJSON(data []byte) error {
	type Alias State
	aux := &struct {
		*Alias
	}{
		Alias: (*Alias)(s),
	}

	if err := json.Unmarshal(data, aux); err != nil {
		return err
	}

	if s.RWMutex == nil {
		s.RWMutex = &sync.RWMutex{}
	}
	if s.Type == "" {
		s.Type = StreamType
	}

	return nil
}

func (s *StreamState) MarshalJSON() ([]byte, error) {
	type Alias StreamState
	p := struct {
		*Alias
		State map[string]any `json:"state"`
	}{
		Alias: (*Alias)(s),
		State: map[string]any{},
	}

	s.State.Range(func(key, value any) bool {
		p.State[key.(string)] = value
		return true
	})

	return json.Marshal(p)
}

func (s *StreamState) UnmarshalJSON(data []byte) error {
	type Alias StreamState
	p := struct {
		*Alias
		State map[string]any `json:"state"`
	}{
		Alias: (*Alias)(s),
	}

	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}

	for key, value := range p.State {
		s.State.Store(key, value)
	}
	if len(p.State) > 0 {
		s.HoldsValue.Store(true)
	}

	return nil
}

// Validate is used when the state is read from file
func (s *State) Validate() error {
	for _, stream := range s.Streams {
		if stream.Stream == "" {
			return fmt.Errorf("stream name missing in state")
		}
	}

	return nil
}
