// Package envfile parses init-style environment files: flat KEY="VALUE"
// lines as found in /etc/default/*. It exposes the result as a koanf
// provider so the file participates in normal config layering.
package envfile

import (
	"bufio"
	"io"
	"strings"

	"github.com/deskctl/deskctl/pkg/errors"
)

// Parse reads KEY=VALUE pairs from r. Blank lines and #-comments are
// skipped, a leading "export " is tolerated, and single or double quotes
// around the value are stripped. Unquoted values lose trailing comments,
// matching what sourcing the file in a shell would produce.
func Parse(r io.Reader) (map[string]string, error) {
	vars := make(map[string]string)

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		line = strings.TrimPrefix(line, "export ")

		key, value, found := strings.Cut(line, "=")
		if !found {
			return nil, errors.Newf(errors.ErrEnvFile,
				"malformed line %d: missing '='", lineNo)
		}

		key = strings.TrimSpace(key)
		if key == "" || strings.ContainsAny(key, " \t") {
			return nil, errors.Newf(errors.ErrEnvFile,
				"malformed line %d: invalid key", lineNo)
		}

		vars[key] = unquote(strings.TrimSpace(value))
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrEnvFile, "failed to read environment file")
	}

	return vars, nil
}

// unquote strips matching surrounding quotes, or cuts an unquoted trailing
// comment.
func unquote(v string) string {
	if len(v) >= 2 {
		if (v[0] == '"' && v[len(v)-1] == '"') || (v[0] == '\'' && v[len(v)-1] == '\'') {
			return v[1 : len(v)-1]
		}
	}

	if i := strings.Index(v, " #"); i >= 0 {
		v = strings.TrimSpace(v[:i])
	}
	return v
}
