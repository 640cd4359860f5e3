package sqlscan

import (
	"fmt"
	"strings"
)

type QueryClass int

const (
	DQL QueryClass = iota
	DML
	DDL
)

func (qc QueryClass) String() string {
	return []string{"DQL", "DML", "DDL"}[qc]
}

func (qc QueryClass) IsSafe() bool {
	return qc == DQL
}

var leadingKeywords = map[string]QueryClass{
	"SELECT":   DQL,
	"WITH":     DQL,
	"SHOW":     DQL,
	"EXPLAIN":  DQL,
	"INSERT":   DML,
	"UPDATE":   DML,
	"DELETE":   DML,
	"REPLACE":  DML,
	"CREATE":   DDL,
	"ALTER":    DDL,
	"DROP":     DDL,
	"TRUNCATE": DDL,
}

// Classify identifies a statement by its leading keyword, skipping
// whitespace and comments. It does not parse the statement.
func Classify(query string) (QueryClass, error) {
	word := leadingWord(query)
	if word == "" {
		return 0, fmt.Errorf("unable to identify query type")
	}

	class, ok := leadingKeywords[strings.ToUpper(word)]
	if !ok {
		return 0, fmt.Errorf("unable to identify query type")
	}
	return class, nil
}

func leadingWord(query string) string {
	rest := strings.TrimSpace(query)

	for {
		switch {
		case strings.HasPrefix(rest, "--"):
			idx := strings.IndexByte(rest, '\n')
			if idx < 0 {
				return ""
			}
			rest = strings.TrimSpace(rest[idx+1:])
		case strings.HasPrefix(rest, "/*"):
			idx := strings.Index(rest, "*/")
			if idx < 0 {
				return ""
			}
			rest = strings.TrimSpace(rest[idx+2:])
		default:
			end := strings.IndexFunc(rest, func(r rune) bool {
				return r == ' ' || r == '\t' || r == '\n' || r == '\r' || r == '(' || r == ';'
			})
			if end < 0 {
				return rest
			}
			return rest[:end]
		}
	}
}
