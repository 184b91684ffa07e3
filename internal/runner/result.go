package runner

import (
	"encoding/json"
	"time"

	"github.com/KaramelBytes/pandacode-cli/internal/utils"
)

// ErrorKind classifies a failed request.
type ErrorKind string

const (
	KindConfig     ErrorKind = "config"
	KindData       ErrorKind = "data"
	KindProvider   ErrorKind = "provider"
	KindGeneration ErrorKind = "generation"
	KindExecution  ErrorKind = "execution"
)

// ConfigSource records where credentials and model came from.
type ConfigSource string

const (
	SourceCLI ConfigSource = "cli"
	SourceEnv ConfigSource = "env"
)

// QueryResult is the single JSON object a query produces. Exactly one of Code
// and Error is non-nil once a request has been processed.
type QueryResult struct {
	Timestamp    time.Time    `json:"timestamp"`
	Code         *string      `json:"code"`
	Error        *string      `json:"error"`
	ErrorKind    ErrorKind    `json:"error_kind,omitempty"`
	Tokens       int          `json:"tokens"`
	Query        string       `json:"query"`
	Model        string       `json:"model"`
	Preference   string       `json:"preference"`
	ConfigSource ConfigSource `json:"config_source"`
	Chart        string       `json:"chart,omitempty"`
	Answer       string       `json:"answer,omitempty"`
}

// OK reports whether the request produced code.
func (q *QueryResult) OK() bool { return q.Code != nil }

func (q *QueryResult) fail(kind ErrorKind, msg string) *QueryResult {
	q.Code = nil
	q.Error = &msg
	q.ErrorKind = kind
	q.Tokens = 0
	q.Chart = ""
	q.Answer = ""
	return q
}

// Marshal encodes the result, indented when pretty is set.
func (q *QueryResult) Marshal(pretty bool) ([]byte, error) {
	if pretty {
		return utils.PrettyJSON(q)
	}
	return json.Marshal(q)
}
