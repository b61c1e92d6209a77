package flagconfig

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"maps"
	"slices"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config is an immutable tree of nested mappings read from YAML or JSON.
// Paths are dot separated; a key that itself contains dots is matched as
// well, so both nested and flat spellings of "features.checkout.v2.enabled"
// resolve.
//
// The zero value and a nil *Config are empty configs.
type Config struct {
	root map[string]any
}

// Reader turns raw text into a Config.
type Reader func(string) (*Config, error)

// Empty returns a config with no keys.
func Empty() *Config {
	return &Config{root: map[string]any{}}
}

// FromMap builds a config from an already decoded document. The map is
// copied, so later changes to m are not visible.
func FromMap(m map[string]any) (*Config, error) {
	root, err := normalize(m)
	if err != nil {
		return nil, err
	}
	mm, ok := root.(map[string]any)
	if !ok {
		return nil, ErrNotMapping
	}
	return &Config{root: mm}, nil
}

// ParseYAML parses a YAML document. An empty document yields an empty config.
func ParseYAML(s string) (*Config, error) {
	var doc any
	if err := yaml.Unmarshal([]byte(s), &doc); err != nil {
		return nil, fmt.Errorf("%w: yaml: %w", ErrParse, err)
	}
	return fromDocument(doc)
}

// ParseJSON parses a JSON document. Numbers keep their literal text, so large
// numeric ids read the same as they do from YAML.
func ParseJSON(s string) (*Config, error) {
	if strings.TrimSpace(s) == "" {
		return Empty(), nil
	}
	dec := json.NewDecoder(strings.NewReader(s))
	dec.UseNumber()

	var doc any
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: json: %w", ErrParse, err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: json: trailing data after document", ErrParse)
	}
	return fromDocument(doc)
}

func fromDocument(doc any) (*Config, error) {
	if doc == nil {
		return Empty(), nil
	}
	root, err := normalize(doc)
	if err != nil {
		return nil, err
	}
	m, ok := root.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: got %T", ErrNotMapping, doc)
	}
	return &Config{root: m}, nil
}

// normalize copies a decoded document, converting every mapping to
// map[string]any.
func normalize(v any) (any, error) {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, child := range t {
			n, err := normalize(child)
			if err != nil {
				return nil, err
			}
			out[k] = n
		}
		return out, nil
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, child := range t {
			n, err := normalize(child)
			if err != nil {
				return nil, err
			}
			out[fmt.Sprint(k)] = n
		}
		return out, nil
	case []any:
		out := make([]any, len(t))
		for i, child := range t {
			n, err := normalize(child)
			if err != nil {
				return nil, err
			}
			out[i] = n
		}
		return out, nil
	case []string:
		out := make([]any, len(t))
		for i, s := range t {
			out[i] = s
		}
		return out, nil
	default:
		return v, nil
	}
}

// Get returns the raw value at path.
func (c *Config) Get(path string) (any, bool) {
	if c == nil || path == "" {
		return nil, false
	}
	return lookup(c.root, strings.Split(path, "."))
}

// lookup prefers the longest key that matches a prefix of the segments.
func lookup(m map[string]any, segments []string) (any, bool) {
	for i := len(segments); i > 0; i-- {
		v, ok := m[strings.Join(segments[:i], ".")]
		if !ok {
			continue
		}
		if i == len(segments) {
			return v, true
		}
		if child, ok := v.(map[string]any); ok {
			if found, ok := lookup(child, segments[i:]); ok {
				return found, true
			}
		}
	}
	return nil, false
}

// Has reports whether path holds a non-null value.
func (c *Config) Has(path string) bool {
	v, ok := c.Get(path)
	return ok && v != nil
}

// String returns the string at path.
func (c *Config) String(path string) (string, bool) {
	v, ok := c.Get(path)
	if !ok {
		return "", false
	}
	return scalarString(v)
}

// StringList returns the list at path with every element rendered as a
// string. Numbers and booleans are accepted; nested lists or mappings make
// the whole value unusable.
func (c *Config) StringList(path string) ([]string, bool) {
	v, ok := c.Get(path)
	if !ok {
		return nil, false
	}
	list, ok := v.([]any)
	if !ok {
		return nil, false
	}
	out := make([]string, 0, len(list))
	for _, item := range list {
		s, ok := scalarString(item)
		if !ok {
			return nil, false
		}
		out = append(out, s)
	}
	return out, true
}

// Float returns the number at path. Numeric strings are accepted.
func (c *Config) Float(path string) (float64, bool) {
	v, ok := c.Get(path)
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		return f, err == nil
	default:
		return 0, false
	}
}

// Bool returns the boolean at path. The strings "true" and "false" are
// accepted as well.
func (c *Config) Bool(path string) (bool, bool) {
	v, ok := c.Get(path)
	if !ok {
		return false, false
	}
	switch b := v.(type) {
	case bool:
		return b, true
	case string:
		parsed, err := strconv.ParseBool(b)
		return parsed, err == nil
	default:
		return false, false
	}
}

// Keys returns the sorted keys directly under path, or the top-level keys when path
// is empty.
func (c *Config) Keys(path string) []string {
	if c == nil {
		return nil
	}
	m := c.root
	if path != "" {
		v, ok := c.Get(path)
		if !ok {
			return nil
		}
		if m, ok = v.(map[string]any); !ok {
			return nil
		}
	}
	return slices.Sorted(maps.Keys(m))
}

func scalarString(v any) (string, bool) {
	switch s := v.(type) {
	case string:
		return s, true
	case bool:
		return strconv.FormatBool(s), true
	case int:
		return strconv.Itoa(s), true
	case int64:
		return strconv.FormatInt(s, 10), true
	case uint64:
		return strconv.FormatUint(s, 10), true
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64), true
	case json.Number:
		return s.String(), true
	default:
		return "", false
	}
}
