package tabular

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/xuri/excelize/v2"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

func decodeCSV(data []byte) (Table, error) {
	reader := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(data, utf8BOM)))
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return Table{}, err
	}
	return fromRecords(records), nil
}

func decodeExcel(data []byte) (Table, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return Table{}, fmt.Errorf("failed to parse Excel file: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return emptyTable(), nil
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return Table{}, fmt.Errorf("failed to parse Excel file: %w", err)
	}
	return fromRecords(rows), nil
}

func decodeJSON(data []byte) (Table, error) {
	data = bytes.TrimSpace(bytes.TrimPrefix(data, utf8BOM))
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var value any
	if err := dec.Decode(&value); err != nil {
		return Table{}, fmt.Errorf("invalid JSON: %w", err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return Table{}, fmt.Errorf("invalid JSON: unexpected data after top-level value")
	}

	if items, ok := value.([]any); ok && len(items) > 0 {
		if _, ok := items[0].(map[string]any); ok {
			headers, err := firstObjectKeys(data)
			if err != nil {
				return Table{}, fmt.Errorf("invalid JSON: %w", err)
			}
			rows := make([][]string, 0, len(items))
			for _, item := range items {
				obj, _ := item.(map[string]any)
				row := make([]string, len(headers))
				for i, h := range headers {
					row[i] = stringifyJSON(obj[h])
				}
				rows = append(rows, row)
			}
			return Table{Headers: headers, Rows: rows, TotalRows: len(rows)}, nil
		}
	}

	var pretty bytes.Buffer
	if err := json.Indent(&pretty, data, "", "  "); err != nil {
		return Table{}, fmt.Errorf("invalid JSON: %w", err)
	}
	return rawLines(pretty.String()), nil
}

// firstObjectKeys returns the keys of the first element of a top-level array
// in source order. Duplicate keys keep their first position.
func firstObjectKeys(data []byte) ([]string, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	if err := expectDelim(dec, '['); err != nil {
		return nil, err
	}
	if err := expectDelim(dec, '{'); err != nil {
		return nil, err
	}
	keys := make([]string, 0, 8)
	seen := make(map[string]struct{})
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("object key is %T", tok)
		}
		var skip json.RawMessage
		if err := dec.Decode(&skip); err != nil {
			return nil, err
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		keys = append(keys, key)
	}
	return keys, nil
}

func expectDelim(dec *json.Decoder, want json.Delim) error {
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != want {
		return fmt.Errorf("expected %q, got %v", want, tok)
	}
	return nil
}

func stringifyJSON(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case json.Number:
		return x.String()
	case bool:
		return strconv.FormatBool(x)
	default:
		raw, err := json.Marshal(x)
		if err != nil {
			return fmt.Sprint(x)
		}
		return string(raw)
	}
}
