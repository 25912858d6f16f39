package tabular

// DefaultPageSize is the number of rows shown per page by the file viewer.
const DefaultPageSize = 50

// Page is one slice of a decoded table.
type Page struct {
	Headers    []string   `json:"headers"`
	Rows       [][]string `json:"rows"`
	PageIndex  int        `json:"pageIndex"`
	PageSize   int        `json:"pageSize"`
	TotalPages int        `json:"totalPages"`
	TotalRows  int        `json:"totalRows"`
}

// TotalPages returns ceil(totalRows/pageSize), or 0 for an empty table.
func TotalPages(totalRows, pageSize int) int {
	if totalRows <= 0 {
		return 0
	}
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	pages := totalRows / pageSize
	if totalRows%pageSize != 0 {
		pages++
	}
	return pages
}

// Paginate returns rows [pageIndex*pageSize, pageIndex*pageSize+pageSize)
// clamped to the available rows. The page index itself is not clamped: a
// start past the end yields an empty page, never an error.
func Paginate(t Table, pageIndex, pageSize int) Page {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	headers := t.Headers
	if headers == nil {
		headers = []string{}
	}
	p := Page{
		Headers:    headers,
		Rows:       [][]string{},
		PageIndex:  pageIndex,
		PageSize:   pageSize,
		TotalPages: TotalPages(t.TotalRows, pageSize),
		TotalRows:  t.TotalRows,
	}
	// Compare page counts before multiplying so huge indexes cannot overflow.
	if pageIndex < 0 || pageIndex >= TotalPages(len(t.Rows), pageSize) {
		return p
	}
	start := pageIndex * pageSize
	end := len(t.Rows)
	if end-start > pageSize {
		end = start + pageSize
	}
	p.Rows = t.Rows[start:end]
	return p
}

// ClampPage keeps a requested page index within [0, totalPages-1]. It is
// the caller-side companion of Paginate.
func ClampPage(pageIndex, totalPages int) int {
	if totalPages <= 0 || pageIndex < 0 {
		return 0
	}
	if pageIndex >= totalPages {
		return totalPages - 1
	}
	return pageIndex
}
