package driver

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/datazip-inc/greenhouse-tap/types"
)

var placeholder = regexp.MustCompile(`\{[a-z_]+\}`)

// ChildContext maps a parent record to the context its children are fetched with
func (s *StreamSpec) ChildContext(parent map[string]any) (types.StreamContext, error) {
	ctx := make(types.StreamContext, len(s.Context))
	for key, field := range s.Context {
		value, found := parent[field]
		if !found || value == nil {
			return nil, fmt.Errorf("parent record of %s carries no %s", s.Name, field)
		}
		ctx[key] = value
	}

	return ctx, nil
}

// ResolvePath fills the path placeholders from the context
func (s *StreamSpec) ResolvePath(ctx types.StreamContext) (string, error) {
	path := s.Path
	for key, value := range ctx {
		path = strings.ReplaceAll(path, "{"+key+"}", url.PathEscape(fmt.Sprint(value)))
	}
	if unresolved := placeholder.FindString(path); unresolved != "" {
		return "", fmt.Errorf("stream[%s] path %s has unresolved %s", s.Name, s.Path, unresolved)
	}

	return path, nil
}

// PostProcess injects the parent identifiers, Harvest does not embed them in
// child payloads
func PostProcess(record map[string]any, ctx types.StreamContext) map[string]any {
	for key, value := range ctx {
		record[key] = value
	}

	return record
}
