package export

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/xuri/excelize/v2"

	"github.com/D-Marc1/Simple-MySQLi/internal/db"
)

const defaultSheet = "Data"

// Styles are int because excelize.File.NewStyle() returns style index
type Styles struct {
	Number           int
	DateTime         int
	ConnectionColumn int
}

// Creates new default styles
func NewStyles(f *excelize.File) (*Styles, error) {
	dateStyle, err := f.NewStyle(&excelize.Style{
		NumFmt: 14,
	})
	if err != nil {
		return nil, err
	}

	decimalPlaces := 2
	numberStyle, err := f.NewStyle(&excelize.Style{
		NumFmt:        0,
		DecimalPlaces: &decimalPlaces,
	})
	if err != nil {
		return nil, err
	}

	connectionColumnStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
	})
	if err != nil {
		return nil, err
	}

	return &Styles{
		Number:           numberStyle,
		DateTime:         dateStyle,
		ConnectionColumn: connectionColumnStyle,
	}, nil
}

// Excel writes the results as a workbook: one sheet per connection, one
// file per connection, or everything merged into one sheet with a
// connection column, per the options.
func Excel(
	ctx context.Context, data map[string]*db.ResultSet,
	output string, options Options,
) error {
	switch {
	case options.SingleFile && !options.SingleSheet:
		return excelSheetPerConnection(ctx, data, output)
	case !options.SingleFile && !options.SingleSheet:
		return excelFilePerConnection(ctx, data, output)
	default:
		return excelMergedSheet(ctx, data, output, options.ConnectionColumn)
	}
}

func excelFilePerConnection(
	ctx context.Context, data map[string]*db.ResultSet,
	output string,
) error {
	for name, set := range data {
		f := excelize.NewFile()
		f.SetSheetName(f.GetSheetName(0), defaultSheet)

		err := writeSheet(f, defaultSheet, set)
		if err != nil {
			slog.ErrorContext(ctx, "Error writing data to sheet", "error", err)
			f.Close()
			return err
		}

		if err := f.SaveAs(suffixed(output, name)); err != nil {
			slog.ErrorContext(ctx, "Error saving file", "error", err)
			f.Close()
			return err
		}
		f.Close()
	}

	return nil
}

func excelSheetPerConnection(ctx context.Context, data map[string]*db.ResultSet, output string) error {
	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			slog.ErrorContext(ctx, "Error closing file", "error", err)
		}
	}()

	for name, set := range data {
		if _, err := f.NewSheet(name); err != nil {
			return err
		}

		if err := writeSheet(f, name, set); err != nil {
			slog.ErrorContext(ctx, "Error writing data to sheet", "error", err)
			return err
		}
	}

	f.DeleteSheet("Sheet1")

	if err := f.SaveAs(output); err != nil {
		slog.ErrorContext(ctx, "Error saving file", "error", err)
		return err
	}

	return nil
}

// excelMergedSheet streams every connection's rows into one sheet, with an
// extra bold column naming the connection each row came from. All result
// sets must share a column list; the first one wins the header.
func excelMergedSheet(
	ctx context.Context, data map[string]*db.ResultSet,
	output string, connectionColumn string,
) error {
	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			slog.ErrorContext(ctx, "Error closing file", "error", err)
		}
	}()

	f.SetSheetName(f.GetSheetName(0), defaultSheet)
	f.SetActiveSheet(0)

	sw, err := f.NewStreamWriter(defaultSheet)
	if err != nil {
		return err
	}
	styles, err := NewStyles(f)
	if err != nil {
		return err
	}

	widths := make(map[int]float64)
	row := 1
	wroteHeader := false

	for name, set := range data {
		if set.RowCount == 0 {
			continue
		}

		columns := withConnectionColumn(set.Columns, connectionColumn)
		if !wroteHeader {
			headers := make([]any, len(columns))
			for i, c := range columns {
				headers[i] = c.Name
				growWidth(widths, i, c.Name)
			}
			if err := sw.SetRow("A1", headers); err != nil {
				return err
			}
			row = 2
			wroteHeader = true
		}

		colStyles := styleByColumn(columns, connectionColumn, styles)
		for _, values := range set.Rows {
			rowData := make([]any, len(columns))
			for j := range columns {
				var val any
				if j < len(values) {
					val = values[j]
				} else {
					val = name
				}
				if styleID, ok := colStyles[j]; ok {
					rowData[j] = excelize.Cell{Value: val, StyleID: styleID}
				} else {
					rowData[j] = val
				}
				growWidth(widths, j, val)
			}

			cell, _ := excelize.CoordinatesToCellName(1, row)
			if err := sw.SetRow(cell, rowData); err != nil {
				return err
			}
			row++
		}
	}

	if !wroteHeader {
		return fmt.Errorf("no data returned")
	}
	if err := sw.Flush(); err != nil {
		return err
	}

	applyColumnWidths(f, defaultSheet, widths)
	freezeHeader(f, defaultSheet)

	if err := f.SaveAs(output); err != nil {
		slog.ErrorContext(ctx, "Error saving file", "error", err)
		return err
	}

	return nil
}

// writeSheet streams one result set into its own sheet: header row, styled
// cells, column sizing and a frozen header.
func writeSheet(f *excelize.File, sheetName string, set *db.ResultSet) error {
	if set.RowCount == 0 {
		return fmt.Errorf("no data returned")
	}

	sw, err := f.NewStreamWriter(sheetName)
	if err != nil {
		return err
	}

	styles, err := NewStyles(f)
	if err != nil {
		return err
	}

	widths := make(map[int]float64)
	headers := make([]any, len(set.Columns))
	for i, c := range set.Columns {
		headers[i] = c.Name
		growWidth(widths, i, c.Name)
	}
	if err := sw.SetRow("A1", headers); err != nil {
		return err
	}

	colStyles := styleByColumn(set.Columns, "", styles)
	for i, values := range set.Rows {
		rowData := make([]any, len(set.Columns))
		for j := range set.Columns {
			val := values[j]
			if styleID, ok := colStyles[j]; ok {
				rowData[j] = excelize.Cell{Value: val, StyleID: styleID}
			} else {
				rowData[j] = val
			}
			growWidth(widths, j, val)
		}

		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := sw.SetRow(cell, rowData); err != nil {
			return err
		}
	}

	if err := sw.Flush(); err != nil {
		return err
	}

	applyColumnWidths(f, sheetName, widths)
	freezeHeader(f, sheetName)
	return nil
}

func withConnectionColumn(columns []db.Column, connectionColumn string) []db.Column {
	if connectionColumn == "" {
		return columns
	}
	out := append(append([]db.Column{}, columns...), db.Column{
		Ordinal: len(columns),
		Name:    connectionColumn,
		Type:    "string",
	})
	return out
}

func styleByColumn(columns []db.Column, connectionColumn string, styles *Styles) map[int]int {
	colStyles := make(map[int]int, len(columns))
	for i, c := range columns {
		switch c.Type {
		case "int8", "int16", "int32", "int64", "uint8", "uint16", "uint32", "uint64", "float32", "float64":
			colStyles[i] = styles.Number
		case "Time":
			colStyles[i] = styles.DateTime
		}

		if connectionColumn != "" && c.Name == connectionColumn {
			colStyles[i] = styles.ConnectionColumn
		}
	}
	return colStyles
}

func growWidth(widths map[int]float64, col int, val any) {
	widths[col] = max(widths[col], float64(len(fmt.Sprintf("%v", val))))
}

func applyColumnWidths(f *excelize.File, sheetName string, widths map[int]float64) {
	for i, width := range widths {
		colName, _ := excelize.ColumnNumberToName(i + 1)
		f.SetColWidth(sheetName, colName, colName, width+2)
	}
}

func freezeHeader(f *excelize.File, sheetName string) {
	f.SetPanes(sheetName, &excelize.Panes{
		Freeze:      true,
		Split:       false,
		XSplit:      0,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomRight",
	})
}
