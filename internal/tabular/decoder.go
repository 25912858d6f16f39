package tabular

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Recognized format tags.
const (
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
	FormatXLS  = "xls"
	FormatJSON = "json"
)

var mimeFormats = map[string]string{
	"text/csv":                 FormatCSV,
	"application/csv":          FormatCSV,
	"application/json":         FormatJSON,
	"application/vnd.ms-excel": FormatXLS,
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet": FormatXLSX,
}

// NormalizeFormat maps a declared type (tag, extension, or MIME type) to a
// recognized format tag. It returns "" when the type is not recognized.
func NormalizeFormat(declared string) string {
	tag := strings.ToLower(strings.TrimSpace(declared))
	tag = strings.TrimPrefix(tag, ".")
	if i := strings.IndexByte(tag, ';'); i >= 0 {
		tag = strings.TrimSpace(tag[:i])
	}
	if f, ok := mimeFormats[tag]; ok {
		return f
	}
	switch tag {
	case FormatCSV, FormatXLSX, FormatXLS, FormatJSON:
		return tag
	}
	return ""
}

// FormatFromName derives a format tag from a file name's extension.
func FormatFromName(fileName string) string {
	return NormalizeFormat(filepath.Ext(strings.TrimSpace(fileName)))
}

type input struct {
	data         []byte
	declaredType string
	fileName     string
}

// A strategy either settles the decode (ok=true) or passes to the next
// candidate in the chain.
type strategy struct {
	name string
	run  func(in input) (Table, bool)
}

var chain = []strategy{
	{name: "declared", run: byDeclaredType},
	{name: "extension", run: byExtension},
	{name: "csv-probe", run: probeCSV},
	{name: "raw-text", run: rawText},
}

// Decode converts raw bytes into a Table. The format is resolved from the
// declared type first, then from the file name extension; unknown content is
// tried as CSV and finally shown as raw lines. Decode never panics and never
// returns an error value: failures are reported through Table.Error.
func Decode(data []byte, declaredType, fileName string) (t Table) {
	defer func() {
		if r := recover(); r != nil {
			t = errorTable(fmt.Sprintf("failed to parse file: %v", r))
		}
	}()
	in := input{data: data, declaredType: declaredType, fileName: fileName}
	for _, s := range chain {
		if out, ok := s.run(in); ok {
			return out
		}
	}
	return rawLines(string(data))
}

// DecodeAs decodes with an explicit format tag and reports whether the tag
// was recognized.
func DecodeAs(format string, data []byte) (Table, bool) {
	switch NormalizeFormat(format) {
	case FormatCSV:
		return settle(decodeCSV(data)), true
	case FormatXLSX, FormatXLS:
		return settle(decodeExcel(data)), true
	case FormatJSON:
		return settle(decodeJSON(data)), true
	}
	return Table{}, false
}

func byDeclaredType(in input) (Table, bool) {
	return DecodeAs(in.declaredType, in.data)
}

func byExtension(in input) (Table, bool) {
	return DecodeAs(FormatFromName(in.fileName), in.data)
}

func probeCSV(in input) (Table, bool) {
	t, err := decodeCSV(in.data)
	if err != nil {
		return Table{}, false
	}
	return t, true
}

func rawText(in input) (Table, bool) {
	return rawLines(string(in.data)), true
}

func settle(t Table, err error) Table {
	if err != nil {
		return errorTable("failed to parse file: " + err.Error())
	}
	return t
}

// rawLines shows text one line per row under the Content header.
func rawLines(text string) Table {
	lines := strings.Split(text, "\n")
	rows := make([][]string, 0, len(lines))
	for _, line := range lines {
		rows = append(rows, []string{strings.TrimSuffix(line, "\r")})
	}
	return Table{
		Headers:   []string{ContentHeader},
		Rows:      rows,
		TotalRows: len(rows),
	}
}
