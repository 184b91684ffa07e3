package ai

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
)

// Model metadata and simple pricing helpers for UX warnings.
// Prices are illustrative and should be verified against the provider's docs.

type ModelInfo struct {
	Name          string
	ContextTokens int     // approximate context window
	InputPerK     float64 // USD per 1K input tokens
	OutputPerK    float64 // USD per 1K output tokens
	// EnvDefault marks models accepted as the environment-provided default.
	EnvDefault bool
}

// DefaultModel is used when neither a flag nor the config names a model.
const DefaultModel = "deepseek-chat"

var models = map[string]ModelInfo{
	"deepseek-chat": {
		Name:          "deepseek-chat",
		ContextTokens: 64000,
		InputPerK:     0.00027,
		OutputPerK:    0.0011,
		EnvDefault:    true,
	},
	"deepseek-r1": {
		Name:          "deepseek-r1",
		ContextTokens: 64000,
		InputPerK:     0.00055,
		OutputPerK:    0.00219,
		EnvDefault:    true,
	},
	"deepseek-reasoner": {
		Name:          "deepseek-reasoner",
		ContextTokens: 64000,
		InputPerK:     0.00055,
		OutputPerK:    0.00219,
	},
	"gpt-4o-mini": {
		Name:          "gpt-4o-mini",
		ContextTokens: 128000,
		InputPerK:     0.00015,
		OutputPerK:    0.0006,
	},
	"gpt-4o": {
		Name:          "gpt-4o",
		ContextTokens: 128000,
		InputPerK:     0.0025,
		OutputPerK:    0.01,
	},
}

// LookupModel returns ModelInfo and ok flag.
func LookupModel(name string) (ModelInfo, bool) {
	mi, ok := models[name]
	return mi, ok
}

// EnvDefaultModels returns the sorted names accepted as an environment default.
func EnvDefaultModels() []string {
	var out []string
	for k, v := range models {
		if v.EnvDefault {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}

// ValidateEnvDefaultModel reports whether name may be used as the default model
// when it was not given explicitly on the command line.
func ValidateEnvDefaultModel(name string) error {
	if mi, ok := LookupModel(name); ok && mi.EnvDefault {
		return nil
	}
	return fmt.Errorf("invalid default model %q (must be one of: %s)", name, strings.Join(EnvDefaultModels(), ", "))
}

// EstimateCostUSD estimates total cost in USD for given tokens using model pricing.
// If the model is unknown, returns 0 and ok=false.
func EstimateCostUSD(model string, promptTokens, completionTokens int) (float64, bool) {
	mi, ok := LookupModel(model)
	if !ok {
		return 0, false
	}
	inCost := (float64(promptTokens) / 1000.0) * mi.InputPerK
	outCost := (float64(completionTokens) / 1000.0) * mi.OutputPerK
	return inCost + outCost, true
}

// LoadCatalogFromJSON loads a JSON object map[string]ModelInfo from a file path.
// Example JSON entry:
// { "deepseek-chat": {"Name":"deepseek-chat","ContextTokens":64000,"InputPerK":0.00027,"OutputPerK":0.0011,"EnvDefault":true} }
func LoadCatalogFromJSON(path string) (map[string]ModelInfo, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	dec := json.NewDecoder(f)
	var m map[string]ModelInfo
	if err := dec.Decode(&m); err != nil {
		return nil, err
	}
	return m, nil
}

// MergeCatalog merges/overrides entries in the in-memory catalog.
func MergeCatalog(m map[string]ModelInfo) {
	if m == nil {
		return
	}
	for k, v := range m {
		models[k] = v
	}
}

// Catalog returns a shallow copy of the current model catalog.
func Catalog() map[string]ModelInfo {
	out := make(map[string]ModelInfo, len(models))
	for k, v := range models {
		out[k] = v
	}
	return out
}
