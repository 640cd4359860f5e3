package locale

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

//go:embed locales/en_US.toml
var defaultCatalog []byte

type CliFlags struct {
	Config       string `toml:"config"`
	Environment  string `toml:"environment"`
	Connections  string `toml:"connections"`
	Mode         string `toml:"mode"`
	Output       string `toml:"output"`
	OutputFormat string `toml:"output_format"`
	NoCache      string `toml:"no_cache"`
	SingleSheet  string `toml:"single_sheet"`
	SingleFile   string `toml:"single_file"`
}

type CliCommands struct {
	Query  string `toml:"query"`
	Exec   string `toml:"exec"`
	Script string `toml:"script"`
	Export string `toml:"export"`
	Check  string `toml:"check"`
}

type CliArgs struct {
	Query  string `toml:"query"`
	Exec   string `toml:"exec"`
	Script string `toml:"script"`
	Export string `toml:"export"`
}

type CliSection struct {
	Description string      `toml:"description"`
	Flags       CliFlags    `toml:"flags"`
	Commands    CliCommands `toml:"commands"`
	Args        CliArgs     `toml:"args"`
}

type ErrorsSection struct {
	InvalidEnvironment  string `toml:"invalid_environment"`
	OutputFormatNotImpl string `toml:"output_format_not_implemented"`
	OutputFormatEmpty   string `toml:"output_format_empty"`
	UnknownConnection   string `toml:"unknown_connection"`
	NoDataReturned      string `toml:"no_data_returned"`
}

type LogsSection struct {
	RunningQueryOnConn      string `toml:"running_query_on_conn"`
	QuerySuccessfulOnConn   string `toml:"query_successful_on_conn"`
	ErrorRunningQueryOnConn string `toml:"error_running_query_on_conn"`
	SkippingConnectionError string `toml:"skipping_connection_error"`
	QueryResultFromCache    string `toml:"query_result_from_cache"`
	QuerySummary            string `toml:"query_summary"`
	IdentifiedQueryType     string `toml:"identified_query_type"`
	UnableIdentifyQueryType string `toml:"unable_identify_query_type"`
}

type Locale struct {
	CLI    CliSection    `toml:"cli"`
	Errors ErrorsSection `toml:"errors"`
	Logs   LogsSection   `toml:"logs"`
}

// L is the active catalog. The embedded en_US strings are always present;
// Load overlays a translation on top of them.
var L = mustDefault()

func mustDefault() *Locale {
	var l Locale
	if err := toml.Unmarshal(defaultCatalog, &l); err != nil {
		panic(fmt.Sprintf("locale: embedded catalog is invalid: %v", err))
	}
	return &l
}

func DetectSystemLocale() string {
	lang := os.Getenv("LANG")
	if lang == "" {
		return "en_US"
	}

	cleanLang := strings.Split(lang, ".")[0]

	return strings.ReplaceAll(cleanLang, "-", "_")
}

// Load activates the named catalog. Missing files and the en_US name fall
// back to the embedded defaults; a translation file only needs the keys it
// overrides.
func Load(localeName string) (*Locale, error) {
	if localeName == "" || strings.ToLower(localeName) == "auto" {
		localeName = DetectSystemLocale()
	}

	l := mustDefault()

	if localeName != "en_US" {
		localePath := filepath.Join("config", "locales", fmt.Sprintf("%s.toml", localeName))
		if _, err := os.Stat(localePath); err == nil {
			if _, err := toml.DecodeFile(localePath, l); err != nil {
				return nil, fmt.Errorf("failed to load locale file %s: %w", localePath, err)
			}
		}
	}

	L = l
	return l, nil
}
