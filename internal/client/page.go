package client

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/smb564/21-points/internal/model"
)

// PageRequest selects a page of a listing. A nil PageRequest lets the server
// apply its defaults.
type PageRequest struct {
	Page int
	Size int
	Sort []string // e.g. "id,asc"
}

func (p *PageRequest) values() url.Values {
	v := url.Values{}
	if p == nil {
		return v
	}
	if p.Page > 0 {
		v.Set("page", strconv.Itoa(p.Page))
	}
	if p.Size > 0 {
		v.Set("size", strconv.Itoa(p.Size))
	}
	for _, s := range p.Sort {
		v.Add("sort", s)
	}
	return v
}

// Page is one page of a listing.
type Page struct {
	Items []model.UserSettings
	// TotalCount comes from X-Total-Count; -1 when the header is missing.
	TotalCount int
	// Links maps a Link relation (first, prev, next, last) to its page number.
	Links map[string]int
}

func newPage(resp *rawResponse) (*Page, error) {
	items, err := decodeList(resp.body)
	if err != nil {
		return nil, err
	}

	total := -1
	if raw := resp.header.Get("X-Total-Count"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			total = n
		}
	}

	return &Page{
		Items:      items,
		TotalCount: total,
		Links:      parseLinkHeader(resp.header.Get("Link")),
	}, nil
}

// parseLinkHeader reads an RFC 5988 Link header of the form
// <url?page=1&size=20>; rel="next",<...>; rel="last".
func parseLinkHeader(header string) map[string]int {
	links := make(map[string]int)
	if header == "" {
		return links
	}

	for _, part := range strings.Split(header, ",") {
		sections := strings.Split(part, ";")
		if len(sections) < 2 {
			continue
		}

		rawURL := strings.TrimSpace(sections[0])
		if !strings.HasPrefix(rawURL, "<") || !strings.HasSuffix(rawURL, ">") {
			continue
		}
		u, err := url.Parse(strings.Trim(rawURL, "<>"))
		if err != nil {
			continue
		}
		page, err := strconv.Atoi(u.Query().Get("page"))
		if err != nil {
			continue
		}

		for _, attr := range sections[1:] {
			attr = strings.TrimSpace(attr)
			if rel, ok := strings.CutPrefix(attr, "rel="); ok {
				links[strings.Trim(rel, `"`)] = page
			}
		}
	}
	return links
}
