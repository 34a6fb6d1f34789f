package config

import (
	"bufio"
	"bytes"
	"strings"

	"github.com/pkg/errors"
)

// ParseINI reads INI text. Sections are "[name]" lines; entries use '=' or
// ':' as separator, whichever comes first; lines starting with '#' or ';' are
// comments; indented lines continue the previous value. Keys are lower-cased,
// section names are kept as written. Duplicate sections or keys are errors.
func ParseINI(data []byte) (*File, error) {
	f := NewFile()
	var (
		cur     *Section
		lastKey string
		lineNo  int
	)
	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		lineNo++
		raw := strings.TrimRight(scanner.Text(), "\r")
		trimmed := strings.TrimSpace(raw)

		if trimmed == "" {
			lastKey = ""
			continue
		}
		if trimmed[0] == '#' || trimmed[0] == ';' {
			continue
		}

		indented := raw[0] == ' ' || raw[0] == '\t'
		if indented && cur != nil && lastKey != "" {
			prev, _ := cur.Get(lastKey)
			if prev == "" {
				cur.values[lastKey] = trimmed
			} else {
				cur.values[lastKey] = prev + "\n" + trimmed
			}
			continue
		}

		if trimmed[0] == '[' {
			if !strings.HasSuffix(trimmed, "]") {
				return nil, &ParseError{Line: lineNo, Err: errors.Wrapf(ErrSyntax, "malformed section header %q", trimmed)}
			}
			name := strings.TrimSpace(trimmed[1 : len(trimmed)-1])
			if name == "" {
				return nil, &ParseError{Line: lineNo, Err: errors.Wrap(ErrSyntax, "empty section name")}
			}
			s, err := f.AddSection(name)
			if err != nil {
				return nil, &ParseError{Section: name, Line: lineNo, Err: err}
			}
			cur, lastKey = s, ""
			continue
		}

		if cur == nil {
			return nil, &ParseError{Line: lineNo, Err: errors.Wrapf(ErrSyntax, "entry %q before any section header", trimmed)}
		}
		idx := strings.IndexAny(trimmed, "=:")
		if idx <= 0 {
			return nil, &ParseError{Section: cur.Name, Line: lineNo, Err: errors.Wrapf(ErrSyntax, "expected key = value, got %q", trimmed)}
		}
		key := strings.ToLower(strings.TrimSpace(trimmed[:idx]))
		value := strings.TrimSpace(trimmed[idx+1:])
		if err := cur.Set(key, value); err != nil {
			return nil, &ParseError{Section: cur.Name, Key: key, Line: lineNo, Err: err}
		}
		lastKey = key
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "unable to read ini")
	}
	return f, nil
}
