// Package tabular turns raw file bytes into a uniform header/rows table for
// display and slices it into pages.
package tabular

// ContentHeader is the single column used when content is shown as raw lines.
const ContentHeader = "Content"

// Table is a decoded file. Rows may be ragged: a row can be shorter or longer
// than Headers. When Error is set, Headers and Rows are empty and the caller
// should fall back to showing the raw content.
type Table struct {
	Headers   []string   `json:"headers"`
	Rows      [][]string `json:"rows"`
	TotalRows int        `json:"totalRows"`
	Error     string     `json:"error,omitempty"`
}

// OK reports whether the table can be used for tabular display.
func (t Table) OK() bool {
	return t.Error == ""
}

func emptyTable() Table {
	return Table{
		Headers: []string{},
		Rows:    [][]string{},
	}
}

func errorTable(msg string) Table {
	t := emptyTable()
	t.Error = msg
	return t
}

// fromRecords treats the first record as the header row.
func fromRecords(records [][]string) Table {
	if len(records) == 0 {
		return emptyTable()
	}
	headers := records[0]
	if headers == nil {
		headers = []string{}
	}
	rows := records[1:]
	if len(rows) == 0 {
		rows = [][]string{}
	}
	return Table{
		Headers:   headers,
		Rows:      rows,
		TotalRows: len(rows),
	}
}
