package driver

import (
	"net/url"
	"strconv"
	"time"

	"github.com/datazip-inc/greenhouse-tap/constants"
)

// v3 filters take an explicit numeric offset
const v3FilterLayout = "2006-01-02T15:04:05-07:00"

// GetURLParams builds the query of one page request. A next page URL carries
// the full query of the page it points to and replaces everything else;
// otherwise the first page asks for the maximum page size plus the
// incremental filter when a bookmark exists.
func GetURLParams(version string, spec *StreamSpec, bookmark *time.Time, next *url.URL) url.Values {
	if next != nil {
		return next.Query()
	}

	params := url.Values{}
	params.Set(constants.PageSizeParam, strconv.Itoa(constants.DefaultPageSize))
	if spec.ReplicationKey == "" || bookmark == nil {
		return params
	}

	switch version {
	case "v3":
		params.Set(spec.ReplicationKey, "gte|"+bookmark.UTC().Format(v3FilterLayout))
	default:
		params.Set(spec.IncrementalParam, bookmark.UTC().Format(time.RFC3339))
	}

	return params
}
