package dataset

import (
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// Sample renders the first n rows as a text table with a leading row index,
// for log output.
func (d *Dataset) Sample(n int) string {
	head := d.Head(n)

	t := table.NewWriter()
	t.SetStyle(table.StyleLight)
	t.Style().Format.Header = text.FormatDefault

	header := make(table.Row, 0, head.Width()+1)
	header = append(header, "")
	for _, c := range head.Columns {
		header = append(header, c)
	}
	t.AppendHeader(header)

	for i, row := range head.Rows {
		r := make(table.Row, 0, len(row)+1)
		r = append(r, strconv.Itoa(i))
		for _, cell := range row {
			if cell.IsNull() {
				r = append(r, "NULL")
				continue
			}
			r = append(r, cell.Text)
		}
		t.AppendRow(r)
	}

	return t.Render()
}
