package types

import (
	"fmt"
	"strings"

	"github.com/datazip-inc/greenhouse-tap/utils"
	"github.com/datazip-inc/greenhouse-tap/utils/logger"
)

type StreamCategories struct {
	SelectedStreams    []string
	IncrementalStreams []StreamInterface
	StandardStreams    []StreamInterface
}

// All returns the selected streams, incremental ones first
func (c *StreamCategories) All() []StreamInterface {
	return append(append([]StreamInterface{}, c.IncrementalStreams...), c.StandardStreams...)
}

func IdentifySelectedStreams(catalog *Catalog, streams []*Stream, state *State) (*StreamCategories, error) {
	categories := &StreamCategories{
		SelectedStreams:    []string{},
		IncrementalStreams: []StreamInterface{},
		StandardStreams:    []StreamInterface{},
	}
	selectedStreamsMap := make(map[string]StreamMetadata)
	for namespace, streamsMetadata := range catalog.SelectedStreams {
		for _, streamMetadata := range streamsMetadata {
			selectedStreamsMap[fmt.Sprintf("%s.%s", namespace, streamMetadata.StreamName)] = streamMetadata
		}
	}

	// streams switched to full refresh lose their bookmark
	fullRefreshed := make(map[string]bool)

	sourceStreams := StreamsToMap(streams...)
	_, _ = utils.ArrayContains(catalog.Streams, func(elem *ConfiguredStream) bool {
		_, selected := selectedStreamsMap[elem.ID()]
		if !(catalog.SelectedStreams == nil || selected) {
			logger.Debugf("Skipping stream %s.%s; not in selected streams.", elem.Namespace(), elem.Name())
			return false
		}

		source, found := sourceStreams[elem.ID()]
		if !found {
			logger.Warnf("Skipping; Configured Stream %s not found in source", elem.ID())
			return false
		}
		if elem.Stream.SyncMode == "" {
			elem.Stream.SyncMode = source.SyncMode
		}
		if err := elem.Validate(source); err != nil {
			logger.Warnf("Skipping; Configured Stream %s found invalid due to reason: %s", elem.ID(), err)
			return false
		}
		elem.Reconcile(source)

		categories.SelectedStreams = append(categories.SelectedStreams, elem.ID())
		switch elem.Stream.SyncMode {
		case INCREMENTAL:
			categories.IncrementalStreams = append(categories.IncrementalStreams, elem)
		default:
			categories.StandardStreams = append(categories.StandardStreams, elem)
			fullRefreshed[elem.ID()] = true
		}

		return false
	})
	// bookmarks of unselected streams are kept for later runs
	kept := make([]*StreamState, 0, len(state.Streams))
	for _, stream := range state.Streams {
		if fullRefreshed[fmt.Sprintf("%s.%s", stream.Namespace, stream.Stream)] {
			logger.Infof("Dropping bookmark of stream %s.%s selected for full refresh", stream.Namespace, stream.Stream)
			continue
		}
		kept = append(kept, stream)
	}
	state.Streams = kept

	if len(categories.SelectedStreams) == 0 {
		return nil, fmt.Errorf("no valid streams found in catalog")
	}

	logger.Infof("Valid selected streams are %s", strings.Join(categories.SelectedStreams, ", "))
	return categories, nil
}
