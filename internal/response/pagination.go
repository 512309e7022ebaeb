package response

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	HeaderTotalCount = "X-Total-Count"
	HeaderLink       = "Link"
)

// PaginationHeaders sets X-Total-Count and an RFC 5988 Link header with
// first, prev, next and last relations for a zero-based page.
func PaginationHeaders(c *gin.Context, page, size, total int) {
	c.Header(HeaderTotalCount, strconv.Itoa(total))
	if link := buildLinkHeader(c.Request.URL, page, size, total); link != "" {
		c.Header(HeaderLink, link)
	}
}

func buildLinkHeader(base *url.URL, page, size, total int) string {
	if size <= 0 {
		return ""
	}
	last := 0
	if total > 0 {
		last = (total - 1) / size
	}

	var links []string
	add := func(p int, rel string) {
		links = append(links, fmt.Sprintf(`<%s>; rel="%s"`, pageURL(base, p, size), rel))
	}
	if page < last {
		add(page+1, "next")
	}
	if page > 0 {
		add(min(page-1, last), "prev")
	}
	add(last, "last")
	add(0, "first")
	return strings.Join(links, ",")
}

func pageURL(base *url.URL, page, size int) string {
	u := *base
	q := u.Query()
	q.Set("page", strconv.Itoa(page))
	q.Set("size", strconv.Itoa(size))
	u.RawQuery = q.Encode()
	return u.RequestURI()
}
