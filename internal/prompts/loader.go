// Package prompts holds the model prompt templates embedded from resume_parsing.json.
package prompts

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"regexp"
	"slices"
	"strings"
	"sync"
)

// Name identifies a template in resume_parsing.json
type Name string

// Templates
const (
	StructuredParse  Name = "structured-parse"
	VisionParse      Name = "vision-parse"
	VisionRetryParse Name = "vision-retry-parse"
)

//go:embed resume_parsing.json
var templateJSON []byte

var placeholderRe = regexp.MustCompile(`\{\{\.(\w+)\}\}`)

var loadTemplates = sync.OnceValues(func() (map[Name]string, error) {
	var templates map[Name]string
	if err := json.Unmarshal(templateJSON, &templates); err != nil {
		return nil, fmt.Errorf("failed to parse prompt templates: %w", err)
	}
	return templates, nil
})

// Get returns the raw template text
func Get(name Name) (string, error) {
	templates, err := loadTemplates()
	if err != nil {
		return "", err
	}
	template, ok := templates[name]
	if !ok {
		return "", fmt.Errorf("prompt template %q not found", name)
	}
	return template, nil
}

// Names lists the available templates, sorted
func Names() []Name {
	templates, err := loadTemplates()
	if err != nil {
		return nil
	}
	names := make([]Name, 0, len(templates))
	for name := range templates {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Placeholders returns the distinct {{.Key}} names a template uses, in order of first use
func Placeholders(template string) []string {
	var keys []string
	for _, m := range placeholderRe.FindAllStringSubmatch(template, -1) {
		if !slices.Contains(keys, m[1]) {
			keys = append(keys, m[1])
		}
	}
	return keys
}

// Render fills every placeholder of the named template. A placeholder without
// a value is an error; values are inserted verbatim and never re-expanded.
func Render(name Name, data map[string]string) (string, error) {
	template, err := Get(name)
	if err != nil {
		return "", err
	}

	var missing []string
	pairs := make([]string, 0, 2*len(data))
	for _, key := range Placeholders(template) {
		value, ok := data[key]
		if !ok {
			missing = append(missing, key)
			continue
		}
		pairs = append(pairs, "{{."+key+"}}", value)
	}
	if len(missing) > 0 {
		return "", fmt.Errorf("prompt template %q: no value for %s", name, strings.Join(missing, ", "))
	}
	return strings.NewReplacer(pairs...).Replace(template), nil
}

// MustRender is Render for templates whose inputs are fixed in code
func MustRender(name Name, data map[string]string) string {
	out, err := Render(name, data)
	if err != nil {
		panic(err)
	}
	return out
}
