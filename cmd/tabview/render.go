package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"agentui/internal/tabular"
)

type viewOptions struct {
	fileName     string
	declaredType string
	page         int
	pageSize     int
	asJSON       bool
}

func render(w io.Writer, data []byte, opts viewOptions) error {
	t := tabular.Decode(data, opts.declaredType, opts.fileName)
	if !t.OK() {
		return fmt.Errorf("%s", t.Error)
	}
	size := opts.pageSize
	if size <= 0 {
		size = tabular.DefaultPageSize
	}
	index := tabular.ClampPage(opts.page, tabular.TotalPages(t.TotalRows, size))
	p := tabular.Paginate(t, index, size)

	if opts.asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(p)
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(p.Headers, "\t"))
	for _, row := range p.Rows {
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	if p.TotalPages > 0 {
		fmt.Fprintf(w, "\npage %d/%d, %d rows\n", p.PageIndex+1, p.TotalPages, p.TotalRows)
	} else {
		fmt.Fprintln(w, "\nno rows")
	}
	return nil
}
