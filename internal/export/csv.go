package export

import (
	"encoding/csv"
	"fmt"
	"os"

	"github.com/D-Marc1/Simple-MySQLi/internal/db"
)

// CSV writes one file per connection, or a single file with a connection
// column when SingleFile is set.
func CSV(data map[string]*db.ResultSet, output string, opts Options) error {
	if opts.SingleFile {
		return csvSingleFile(data, output, opts.ConnectionColumn)
	}

	for name, set := range data {
		if err := csvWriteFile(suffixed(output, name), set, "", ""); err != nil {
			return err
		}
	}
	return nil
}

func csvSingleFile(data map[string]*db.ResultSet, output string, connectionColumn string) error {
	f, err := os.Create(output)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	wroteHeader := false

	for name, set := range data {
		if !wroteHeader {
			if err := w.Write(csvHeader(set, connectionColumn)); err != nil {
				return err
			}
			wroteHeader = true
		}
		connValue := ""
		if connectionColumn != "" {
			connValue = name
		}
		if err := csvWriteRows(w, set, connValue); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

func csvWriteFile(path string, set *db.ResultSet, connectionColumn, connectionName string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(csvHeader(set, connectionColumn)); err != nil {
		return err
	}
	if err := csvWriteRows(w, set, connectionName); err != nil {
		return err
	}

	w.Flush()
	return w.Error()
}

func csvHeader(set *db.ResultSet, connectionColumn string) []string {
	header := make([]string, 0, len(set.Columns)+1)
	for _, c := range set.Columns {
		header = append(header, c.Name)
	}
	if connectionColumn != "" {
		header = append(header, connectionColumn)
	}
	return header
}

func csvWriteRows(w *csv.Writer, set *db.ResultSet, connectionName string) error {
	for _, row := range set.Rows {
		record := make([]string, 0, len(row)+1)
		for _, v := range row {
			record = append(record, csvValue(v))
		}
		if connectionName != "" {
			record = append(record, connectionName)
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}
	return nil
}

func csvValue(v any) string {
	if v == nil {
		return ""
	}
	return fmt.Sprintf("%v", v)
}
