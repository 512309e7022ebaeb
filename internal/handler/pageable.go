package handler

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/smb564/21-points/internal/model"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// parsePageable reads page, size and sort=property[,asc|desc] query params.
// Sorting by an unknown property is left to the store, which ignores it.
func parsePageable(c *gin.Context) (model.Pageable, error) {
	p := model.Pageable{Size: defaultPageSize}

	if raw := c.Query("page"); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil || page < 0 {
			return p, fmt.Errorf("invalid page %q", raw)
		}
		p.Page = page
	}
	if raw := c.Query("size"); raw != "" {
		size, err := strconv.Atoi(raw)
		if err != nil || size <= 0 {
			return p, fmt.Errorf("invalid size %q", raw)
		}
		p.Size = min(size, maxPageSize)
	}
	if p.Page > math.MaxInt/p.Size {
		return p, fmt.Errorf("page %d out of range", p.Page)
	}

	for _, raw := range c.QueryArray("sort") {
		property, dir, _ := strings.Cut(raw, ",")
		if property == "" {
			continue
		}
		o := model.Order{Property: property}
		switch strings.ToLower(dir) {
		case "", "asc":
		case "desc":
			o.Desc = true
		default:
			return p, fmt.Errorf("invalid sort direction %q", dir)
		}
		p.Sort = append(p.Sort, o)
	}
	return p, nil
}
