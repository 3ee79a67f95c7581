// Package prompts holds the prompt templates sent to the scoring oracle.
// Each embedded JSON file maps template keys to template text.
package prompts

import (
	"embed"
	"fmt"
	"strings"
	"sync"

	"github.com/goccy/go-json"
)

//go:embed *.json
var files embed.FS

var (
	loaded   = make(map[string]map[string]string)
	loadedMu sync.Mutex
)

// Get returns the template stored under key in the embedded file name,
// e.g. Get("matching.json", "rank-candidates").
func Get(name, key string) (string, error) {
	set, err := load(name)
	if err != nil {
		return "", err
	}
	tmpl, ok := set[key]
	if !ok {
		return "", fmt.Errorf("prompt key %q not found in %s", key, name)
	}
	return tmpl, nil
}

// Format fills {{.Key}} placeholders from data in a single pass. Substituted
// values are never rescanned, so profile text that happens to contain a
// placeholder is inserted verbatim. Unknown placeholders are left in place.
func Format(tmpl string, data map[string]string) string {
	pairs := make([]string, 0, 2*len(data))
	for key, value := range data {
		pairs = append(pairs, "{{."+key+"}}", value)
	}
	return strings.NewReplacer(pairs...).Replace(tmpl)
}

func load(name string) (map[string]string, error) {
	loadedMu.Lock()
	defer loadedMu.Unlock()

	if set, ok := loaded[name]; ok {
		return set, nil
	}

	data, err := files.ReadFile(name)
	if err != nil {
		return nil, fmt.Errorf("failed to read prompt file %s: %w", name, err)
	}
	var set map[string]string
	if err := json.Unmarshal(data, &set); err != nil {
		return nil, fmt.Errorf("failed to parse prompt file %s: %w", name, err)
	}
	loaded[name] = set
	return set, nil
}
