package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
)

// ParseTOML reads a TOML document. Every top-level table is a section; keys
// nested below it are flattened with '.', so `param.x = "1.0"` and
// `"param.x" = "1.0"` are equivalent. Arrays become comma separated values.
func ParseTOML(data []byte) (*File, error) {
	var raw map[string]any
	md, err := toml.Decode(string(data), &raw)
	if err != nil {
		return nil, &ParseError{Err: errors.Wrap(ErrSyntax, err.Error())}
	}

	f := NewFile()
	for _, key := range md.Keys() {
		v, ok := lookupTOML(raw, key)
		if !ok {
			continue
		}
		if _, isTable := v.(map[string]any); isTable {
			if len(key) == 1 {
				if _, err := f.AddSection(key[0]); err != nil {
					return nil, &ParseError{Section: key[0], Err: err}
				}
			}
			continue
		}
		if len(key) == 1 {
			return nil, &ParseError{Key: key[0], Err: errors.Wrap(ErrSyntax, "entry outside any table")}
		}
		sec, ok := f.Section(key[0])
		if !ok {
			// implicit table, e.g. only [a.b] was declared
			if sec, err = f.AddSection(key[0]); err != nil {
				return nil, &ParseError{Section: key[0], Err: err}
			}
		}
		name := strings.Join(key[1:], ".")
		value, err := formatScalar(v)
		if err != nil {
			return nil, &ParseError{Section: sec.Name, Key: name, Err: err}
		}
		if err := sec.Set(name, value); err != nil {
			return nil, &ParseError{Section: sec.Name, Key: name, Err: err}
		}
	}
	return f, nil
}

func lookupTOML(raw map[string]any, key toml.Key) (any, bool) {
	var cur any = raw
	for _, k := range key {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		if cur, ok = m[k]; !ok {
			return nil, false
		}
	}
	return cur, true
}

func formatScalar(v any) (string, error) {
	switch x := v.(type) {
	case string:
		return x, nil
	case bool:
		return strconv.FormatBool(x), nil
	case int64:
		return strconv.FormatInt(x, 10), nil
	case int:
		return strconv.Itoa(x), nil
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64), nil
	case time.Time:
		return x.Format(time.RFC3339), nil
	case []any:
		parts := make([]string, len(x))
		for i, item := range x {
			s, err := formatScalar(item)
			if err != nil {
				return "", err
			}
			parts[i] = s
		}
		return strings.Join(parts, ", "), nil
	default:
		return "", errors.Wrap(ErrUnsupportedValue, fmt.Sprintf("%T", v))
	}
}
