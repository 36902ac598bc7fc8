package restapi

import (
	"net/http"
	"net/url"
	"strings"
)

// Paginator decides the next page from a response, nil ends the page loop
type Paginator interface {
	GetNext(resp *http.Response) *url.URL
}

// LinkHeaderPaginator follows the rel="next" entry of the Link header
type LinkHeaderPaginator struct{}

func (LinkHeaderPaginator) GetNext(resp *http.Response) *url.URL {
	if resp == nil {
		return nil
	}

	next, found := ParseLinkHeader(strings.Join(resp.Header.Values("Link"), ","))["next"]
	if !found {
		return nil
	}

	nextURL, err := url.Parse(next)
	if err != nil {
		return nil
	}
	if resp.Request != nil && resp.Request.URL != nil {
		nextURL = resp.Request.URL.ResolveReference(nextURL)
	}

	return nextURL
}

// ParseLinkHeader maps each rel value to its target URL. Entries without an
// angle-bracketed target are skipped, the first entry wins for a repeated rel.
func ParseLinkHeader(header string) map[string]string {
	links := map[string]string{}

	for _, entry := range strings.Split(header, ",") {
		segments := strings.Split(entry, ";")
		target := strings.TrimSpace(segments[0])
		if len(target) < 2 || target[0] != '<' || target[len(target)-1] != '>' {
			continue
		}
		target = strings.TrimSpace(target[1 : len(target)-1])
		if target == "" {
			continue
		}

		for _, param := range segments[1:] {
			key, value, found := strings.Cut(param, "=")
			if !found || !strings.EqualFold(strings.TrimSpace(key), "rel") {
				continue
			}

			for _, rel := range strings.Fields(strings.Trim(strings.TrimSpace(value), `"'`)) {
				rel = strings.ToLower(rel)
				if _, exists := links[rel]; !exists {
					links[rel] = target
				}
			}
		}
	}

	return links
}
