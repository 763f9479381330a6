package chat

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultLocale is used when a requested locale has no catalogue entry.
const DefaultLocale = "id-ID"

//go:embed locales.yaml
var localesYAML []byte

// Messages are the user-visible texts of one locale.
type Messages struct {
	Locale      string `yaml:"-"`
	Greeting    string `yaml:"greeting"`
	Placeholder string `yaml:"placeholder"`
	ErrorPrefix string `yaml:"error_prefix"`
	BadFormat   string `yaml:"bad_format"`
	Unreachable string `yaml:"unreachable"`
}

// ParseCatalogue decodes a locale -> Messages YAML document.
func ParseCatalogue(b []byte) (map[string]Messages, error) {
	var cat map[string]Messages
	if err := yaml.Unmarshal(b, &cat); err != nil {
		return nil, fmt.Errorf("parse locale catalogue: %w", err)
	}
	for k, m := range cat {
		m.Locale = k
		cat[k] = m
	}
	return cat, nil
}

// LoadMessages returns the built-in texts for locale. It matches the full tag
// first, then the language alone, then falls back to DefaultLocale.
func LoadMessages(locale string) Messages {
	cat, err := ParseCatalogue(localesYAML)
	if err != nil {
		panic(err) // embedded file is part of the build
	}
	return lookup(cat, locale)
}

func lookup(cat map[string]Messages, locale string) Messages {
	want := strings.ReplaceAll(strings.TrimSpace(locale), "_", "-")
	for k, m := range cat {
		if strings.EqualFold(k, want) {
			return m
		}
	}
	base, _, _ := strings.Cut(want, "-")
	for k, m := range cat {
		kb, _, _ := strings.Cut(k, "-")
		if base != "" && strings.EqualFold(kb, base) {
			return m
		}
	}
	return cat[DefaultLocale]
}
