package tflib

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

type splitParams struct {
	Delimiter string `mapstructure:"delimiter"`
}

func split(args []any, params any) (any, error) {
	p := splitParams{Delimiter: " "}
	if err := decodeParams("split", params, &p); err != nil {
		return nil, err
	}
	v, err := one("split", args)
	if err != nil {
		return nil, err
	}
	s, ok := v.(string)
	if !ok {
		return nil, fmt.Errorf("split: expected a string, got %T", v)
	}
	parts := strings.Split(s, p.Delimiter)
	out := make([]any, len(parts))
	for i, part := range parts {
		out[i] = part
	}
	return out, nil
}

type extractParams struct {
	Delimiter string  `mapstructure:"delimiter"`
	Position  int     `mapstructure:"position"`
	Default   *string `mapstructure:"default"`
}

func extractMiddleName(args []any, params any) (any, error) {
	p := extractParams{Delimiter: " ", Position: 1}
	if err := decodeParams("extract_middle_name", params, &p); err != nil {
		return nil, err
	}
	v, err := one("extract_middle_name", args)
	if err != nil {
		return nil, err
	}
	fallback := func() any {
		if p.Default == nil {
			return nil
		}
		return *p.Default
	}
	if v == nil || v == "" {
		return fallback(), nil
	}
	parts := strings.Split(fmt.Sprint(v), p.Delimiter)
	if p.Position >= 0 && p.Position < len(parts) {
		return parts[p.Position], nil
	}
	return fallback(), nil
}

// Flag bits follow the common regex flag numbering.
const (
	flagIgnoreCase = 2
	flagMultiline  = 8
	flagDotAll     = 16
)

type stripParams struct {
	Pattern     string `mapstructure:"pattern"`
	Replacement string `mapstructure:"replacement"`
	Flags       int    `mapstructure:"flags"`
}

func stripPattern(args []any, params any) (any, error) {
	var p stripParams
	if err := decodeParams("strip_pattern", params, &p); err != nil {
		return nil, err
	}
	v, err := one("strip_pattern", args)
	if err != nil {
		return nil, err
	}
	if v == nil || v == "" || p.Pattern == "" {
		return v, nil
	}
	var prefix string
	if p.Flags&flagIgnoreCase != 0 {
		prefix += "i"
	}
	if p.Flags&flagMultiline != 0 {
		prefix += "m"
	}
	if p.Flags&flagDotAll != 0 {
		prefix += "s"
	}
	pattern := p.Pattern
	if prefix != "" {
		pattern = "(?" + prefix + ")" + pattern
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("strip_pattern: %w", err)
	}
	return re.ReplaceAllString(fmt.Sprint(v), p.Replacement), nil
}

type caseParams struct {
	CaseType   string   `mapstructure:"case_type"`
	Exceptions []string `mapstructure:"exceptions"`
}

func normalizeCase(args []any, params any) (any, error) {
	p := caseParams{CaseType: "sentence"}
	if err := decodeParams("normalize_case", params, &p); err != nil {
		return nil, err
	}
	v, err := one("normalize_case", args)
	if err != nil {
		return nil, err
	}
	if v == nil || v == "" {
		return v, nil
	}
	s := fmt.Sprint(v)
	switch p.CaseType {
	case "upper":
		return cases.Upper(language.Und).String(s), nil
	case "lower":
		return cases.Lower(language.Und).String(s), nil
	case "title":
		return cases.Title(language.Und).String(s), nil
	case "sentence":
		return sentenceCase(s, p.Exceptions), nil
	}
	return s, nil
}

// sentenceCase capitalizes the first word, lowercases the rest and
// upper-cases any word whose core (trailing punctuation trimmed) is an
// exception.
func sentenceCase(s string, exceptions []string) string {
	upper := cases.Upper(language.Und)
	lower := cases.Lower(language.Und)
	words := strings.Fields(s)
	for i, w := range words {
		core := strings.TrimRight(w, ".,;:!?")
		switch {
		case isException(core, exceptions):
			words[i] = upper.String(core)
		case i == 0:
			words[i] = capitalize(w)
		default:
			words[i] = lower.String(w)
		}
	}
	return strings.Join(words, " ")
}

func isException(word string, exceptions []string) bool {
	for _, e := range exceptions {
		if strings.EqualFold(word, e) {
			return true
		}
	}
	return false
}

func capitalize(w string) string {
	r, size := utf8.DecodeRuneInString(w)
	if r == utf8.RuneError {
		return w
	}
	return string(unicode.ToUpper(r)) + cases.Lower(language.Und).String(w[size:])
}

type prefixParams struct {
	Prefix string `mapstructure:"prefix"`
}

func addPrefix(args []any, params any) (any, error) {
	var p prefixParams
	if err := decodeParams("add_prefix", params, &p); err != nil {
		return nil, err
	}
	v, err := one("add_prefix", args)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, nil
	}
	return p.Prefix + fmt.Sprint(v), nil
}

type concatParams struct {
	Delimiter string `mapstructure:"delimiter"`
	Prefix    string `mapstructure:"prefix"`
	Suffix    string `mapstructure:"suffix"`
	SkipNull  bool   `mapstructure:"skip_null"`
}

func concatFields(args []any, params any) (any, error) {
	p := concatParams{Delimiter: "_", SkipNull: true}
	if err := decodeParams("concat_fields", params, &p); err != nil {
		return nil, err
	}
	var parts []string
	for _, v := range flatten(args) {
		switch {
		case v == nil && p.SkipNull:
		case v == nil:
			parts = append(parts, "")
		case p.SkipNull && strings.TrimSpace(fmt.Sprint(v)) == "":
		default:
			parts = append(parts, fmt.Sprint(v))
		}
	}
	return p.Prefix + strings.Join(parts, p.Delimiter) + p.Suffix, nil
}
