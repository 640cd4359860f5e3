package export

import (
	"context"
	"fmt"
	"strings"

	"github.com/D-Marc1/Simple-MySQLi/internal/db"
)

// Formats supported by Write.
var Formats = []string{"xlsx", "csv", "json"}

type Options struct {
	Format           string
	SingleFile       bool
	SingleSheet      bool
	ConnectionColumn string
}

// Write dispatches one result set per connection to the requested format.
func Write(ctx context.Context, data map[string]*db.ResultSet, output string, opts Options) error {
	switch strings.ToLower(opts.Format) {
	case "xlsx":
		return Excel(ctx, data, output, opts)
	case "csv":
		return CSV(data, output, opts)
	case "json":
		return JSON(data, output)
	}
	return fmt.Errorf("output format %s is not implemented", opts.Format)
}

// suffixed inserts a connection name before the file extension, for
// per-connection output files.
func suffixed(output, name string) string {
	idx := strings.LastIndexByte(output, '.')
	if idx < 0 {
		return fmt.Sprintf("%s_%s", output, name)
	}
	return fmt.Sprintf("%s_%s%s", output[:idx], name, output[idx:])
}
