package validation

import (
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/halalbiye/halalbiye-server/src/models"
)

// ListParams is a parsed GET /users query.
type ListParams struct {
	Match models.Profile
	// Page and Limit are zero when the caller did not ask for pagination.
	Page  int64
	Limit int64
}

// Paginated reports whether page or limit was supplied.
func (p ListParams) Paginated() bool {
	return p.Page > 0 || p.Limit > 0
}

// Query converts p to a store query that leaves out excludeEmail.
func (p ListParams) Query(excludeEmail string) models.UserQuery {
	q := models.UserQuery{Match: p.Match, ExcludeEmail: excludeEmail}
	if p.Paginated() {
		page, limit := p.PageAndLimit()
		q.Limit = limit
		q.Skip = (page - 1) * limit
	}
	return q
}

// PageAndLimit fills in defaults for whichever of page and limit is missing.
func (p ListParams) PageAndLimit() (int64, int64) {
	page, limit := p.Page, p.Limit
	if page == 0 {
		page = 1
	}
	if limit == 0 {
		limit = defaultLimit
	}
	return page, limit
}

const (
	defaultLimit = 10
	maxLimit     = 100
	// keeps (page-1)*limit inside int64
	maxPage      = math.MaxInt64 / maxLimit
)

// UserFilter parses equality filters on profile attributes plus the
// reserved page and limit keys. Any other key is rejected.
func UserFilter(query map[string]string) (ListParams, Errors) {
	var (
		errs Errors
		out  ListParams
	)

	keys := make([]string, 0, len(query))
	for k := range query {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		raw := strings.TrimSpace(query[key])
		switch key {
		case "page":
			out.Page = positive(key, raw, maxPage, &errs)
		case "limit":
			out.Limit = positive(key, raw, maxLimit, &errs)
		case "name":
			out.Match.Name = filterText(raw)
		case "religion":
			out.Match.Religion = filterText(raw)
		case "location":
			out.Match.Location = filterText(raw)
		case "education":
			out.Match.Education = filterText(raw)
		case "occupation":
			out.Match.Occupation = filterText(raw)
		case "gender":
			g := models.Gender(raw)
			if !g.Valid() {
				errs.Add(key, "Gender must be one of Male, Female, Other")
				continue
			}
			out.Match.Gender = &g
		case "age":
			n, err := strconv.Atoi(raw)
			if err != nil {
				errs.Add(key, "Age must be an integer")
				continue
			}
			if n < 0 {
				errs.Add(key, "Age must be positive")
				continue
			}
			out.Match.Age = &n
		case "height":
			h, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				errs.Add(key, "Height must be a number")
				continue
			}
			if h <= 0 {
				errs.Add(key, "Height must be positive")
				continue
			}
			out.Match.Height = &h
		default:
			errs.Add(key, key+" is not a filterable field")
		}
	}
	return out, errs
}

func filterText(raw string) *string {
	s := Sanitize(raw)
	return &s
}

// positive parses a page or limit value no greater than max.
func positive(key, raw string, max int64, errs *Errors) int64 {
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || n < 1 {
		errs.Add(key, key+" must be a positive integer")
		return 0
	}
	if n > max {
		errs.Add(key, key+" can not be more than "+strconv.FormatInt(max, 10))
		return 0
	}
	return n
}
