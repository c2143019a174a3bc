package models

// PageMeta is the pagination block of list responses.
type PageMeta struct {
	Page      int64 `json:"page"`
	Limit     int64 `json:"limit"`
	Total     int64 `json:"total"`
	TotalPage int64 `json:"totalPage"`
}

// NewPageMeta computes totalPage from total and limit.
// A zero limit means everything fit on one page.
func NewPageMeta(page, limit, total int64) PageMeta {
	meta := PageMeta{Page: page, Limit: limit, Total: total, TotalPage: 1}
	if limit > 0 {
		meta.TotalPage = (total + limit - 1) / limit
	}
	if meta.TotalPage == 0 {
		meta.TotalPage = 1
	}
	return meta
}
