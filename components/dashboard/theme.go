package dashboard

import (
	"sort"
	"strings"
)

// Theme carries the design tokens shared by the HTML templates and the TUI.
type Theme struct {
	Name   string
	Tokens map[string]string
}

// DefaultTheme returns the built-in light theme.
func DefaultTheme() Theme {
	return Theme{
		Name: "light",
		Tokens: map[string]string{
			"accent":      "#6366F1",
			"muted":       "#6B7280",
			"surface":     "#FFFFFF",
			"border":      "#E5E7EB",
			"danger":      "#DC2626",
			"grid-gap":    "1rem",
			"grid-column": "minmax(16rem, 1fr)",
		},
	}
}

// Token returns a token value or fallback.
func (t Theme) Token(name, fallback string) string {
	if value, ok := t.Tokens[name]; ok && value != "" {
		return value
	}
	return fallback
}

// CSSVariables normalizes token keys into CSS variable names.
func (t Theme) CSSVariables() map[string]string {
	if len(t.Tokens) == 0 {
		return nil
	}
	vars := make(map[string]string, len(t.Tokens))
	for key, value := range t.Tokens {
		name := normalizeCSSVariable(key)
		if name == "" {
			continue
		}
		vars[name] = value
	}
	return vars
}

// CSSVariablesInline renders the CSS variable map as a style string with
// stable ordering.
func (t Theme) CSSVariablesInline() string {
	vars := t.CSSVariables()
	if len(vars) == 0 {
		return ""
	}
	keys := make([]string, 0, len(vars))
	for key := range vars {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	var builder strings.Builder
	for _, key := range keys {
		value := vars[key]
		if value == "" {
			continue
		}
		builder.WriteString(key)
		builder.WriteString(": ")
		builder.WriteString(value)
		builder.WriteString("; ")
	}
	return strings.TrimSpace(builder.String())
}

func normalizeCSSVariable(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}
	if strings.HasPrefix(name, "--") {
		return name
	}
	return "--" + name
}
