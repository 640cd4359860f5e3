package export

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/D-Marc1/Simple-MySQLi/internal/db"
	"github.com/D-Marc1/Simple-MySQLi/internal/fetch"
)

// JSON writes all connections into one document keyed by connection name,
// each result as an array of column-ordered objects.
func JSON(data map[string]*db.ResultSet, output string) error {
	shaper := fetch.NewShaper()
	doc := make(map[string][]fetch.Record, len(data))

	for name, set := range data {
		shaped, err := shaper.FetchAll(set.Result(), "assoc")
		if err != nil {
			return fmt.Errorf("shaping %s: %w", name, err)
		}
		doc[name] = shaped.([]fetch.Record)
	}

	f, err := os.Create(output)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}
