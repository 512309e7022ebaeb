package repository

import (
	"sort"
	"strconv"
	"strings"

	"github.com/smb564/21-points/internal/model"
)

// searchFields are the properties a query term may name, keyed by lower case.
var searchFields = map[string]string{
	"id":           "id",
	"weeklygoal":   "weeklyGoal",
	"weightunit":   "weightUnit",
	"remindertime": "reminderTime",
	"user":         "user",
}

type searchTerm struct {
	field  string // empty matches any field
	value  string
	prefix bool
}

// SearchQuery is a parsed query string: whitespace-separated terms, OR'ed.
// "*" or an empty string matches everything.
type SearchQuery struct {
	raw      string
	matchAll bool
	terms    []searchTerm
}

// ParseSearchQuery parses raw. It never fails; unknown field names are
// treated as part of a bare value.
func ParseSearchQuery(raw string) SearchQuery {
	q := SearchQuery{raw: raw}
	for _, tok := range strings.Fields(raw) {
		if tok == "*" {
			q.matchAll = true
			continue
		}

		t := searchTerm{value: tok}
		if name, value, ok := strings.Cut(tok, ":"); ok {
			if field, known := searchFields[strings.ToLower(name)]; known {
				t.field, t.value = field, value
			}
		}
		t.value = strings.ToLower(strings.Trim(t.value, `"`))
		if strings.HasSuffix(t.value, "*") {
			t.prefix = true
			t.value = strings.TrimSuffix(t.value, "*")
		}
		q.terms = append(q.terms, t)
	}
	if len(q.terms) == 0 {
		q.matchAll = true
	}
	return q
}

func (q SearchQuery) String() string {
	return q.raw
}

// Match reports whether s satisfies at least one term.
func (q SearchQuery) Match(s *model.UserSettings) bool {
	if q.matchAll {
		return true
	}
	values := searchValues(s)
	for _, t := range q.terms {
		if t.field != "" {
			if t.matches(values[t.field]) {
				return true
			}
			continue
		}
		for _, v := range values {
			if t.matches(v) {
				return true
			}
		}
	}
	return false
}

func (t searchTerm) matches(v string) bool {
	if v == "" {
		return false
	}
	v = strings.ToLower(v)
	if t.prefix {
		return strings.HasPrefix(v, t.value)
	}
	return v == t.value
}

func searchValues(s *model.UserSettings) map[string]string {
	values := map[string]string{
		"id":           strconv.FormatInt(s.ID, 10),
		"reminderTime": s.ReminderTime,
	}
	if s.WeeklyGoal != nil {
		values["weeklyGoal"] = strconv.Itoa(*s.WeeklyGoal)
	}
	if s.WeightUnit != nil {
		values["weightUnit"] = string(*s.WeightUnit)
	}
	if s.User != nil {
		if s.User.Login != "" {
			values["user"] = s.User.Login
		} else {
			values["user"] = strconv.FormatInt(s.User.ID, 10)
		}
	}
	return values
}

// sortUserSettings orders items in place by orders, then by id.
func sortUserSettings(items []model.UserSettings, orders []model.Order) {
	sort.SliceStable(items, func(i, j int) bool {
		for _, o := range orders {
			c := compareProperty(&items[i], &items[j], o.Property)
			if c == 0 {
				continue
			}
			if o.Desc {
				return c > 0
			}
			return c < 0
		}
		return items[i].ID < items[j].ID
	})
}

func compareProperty(a, b *model.UserSettings, property string) int {
	switch property {
	case "id":
		return compareInt64(a.ID, b.ID)
	case "weeklyGoal":
		return compareInt64(intOr(a.WeeklyGoal), intOr(b.WeeklyGoal))
	case "weightUnit":
		return strings.Compare(searchValues(a)["weightUnit"], searchValues(b)["weightUnit"])
	case "reminderTime":
		return strings.Compare(a.ReminderTime, b.ReminderTime)
	default:
		return 0
	}
}

func intOr(p *int) int64 {
	if p == nil {
		return -1
	}
	return int64(*p)
}

func compareInt64(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
