package template

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// tagRegex matches <% ... %> tags. The groups are the opening marker, the
// expression and the closing marker.
var tagRegex = regexp.MustCompile(`(?s)<%([-=_#]?)(.*?)([-_]?)%>`)

// helperCallPattern matches helper('path') or helper(filename, "path").
var helperCallPattern = regexp.MustCompile(`^(\w+)\(\s*(?:filename\s*,\s*)?(?:'([^']*)'|"([^"]*)")\s*\)$`)

// ErrIncludeCycle is returned when a file includes itself, directly or not.
var ErrIncludeCycle = errors.New("template include cycle")

// Error describes a rendering failure in a specific file.
type Error struct {
	Path string
	Tag  string
	Err  error
}

func (e *Error) Error() string {
	if e.Tag != "" {
		return fmt.Sprintf("%s: %s: %v", e.Path, e.Tag, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Renderer renders config templates. A Renderer is stateless and safe for
// concurrent use.
type Renderer struct {
	helpers  map[string]bool
	readFile func(string) ([]byte, error)
}

// New creates a renderer that recognizes the given helper names.
func New(helpers ...string) *Renderer {
	r := &Renderer{
		helpers:  make(map[string]bool, len(helpers)),
		readFile: os.ReadFile,
	}
	for _, h := range helpers {
		r.helpers[h] = true
	}
	return r
}

// Render renders content that was read from path. Includes are resolved
// relative to the directory of path.
func (r *Renderer) Render(path string, content []byte) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", &Error{Path: path, Err: err}
	}
	return r.render(abs, string(content), []string{abs})
}

// render expands every tag in content. stack holds the absolute paths of the
// files currently being rendered, outermost first.
func (r *Renderer) render(path, content string, stack []string) (string, error) {
	matches := tagRegex.FindAllStringSubmatchIndex(content, -1)
	if len(matches) == 0 {
		return content, nil
	}

	var out strings.Builder
	last := 0
	for _, m := range matches {
		out.WriteString(content[last:m[0]])
		last = m[1] + trailingTrim(content[m[1]:], content[m[6]:m[7]])

		tag := content[m[0]:m[1]]
		marker := content[m[2]:m[3]]
		expr := strings.TrimSpace(content[m[4]:m[5]])

		switch marker {
		case "#":
			continue
		case "-":
			rendered, err := r.evaluate(path, expr, stack)
			if err != nil {
				var tplErr *Error
				if errors.As(err, &tplErr) {
					return "", err
				}
				return "", &Error{Path: path, Tag: tag, Err: err}
			}
			out.WriteString(rendered)
		default:
			return "", &Error{Path: path, Tag: tag, Err: errors.New("unsupported template tag")}
		}
	}
	out.WriteString(content[last:])
	return out.String(), nil
}

// trailingTrim returns how many bytes of rest a closing marker swallows:
// "-%>" eats one newline, "_%>" eats all whitespace.
func trailingTrim(rest, closer string) int {
	switch closer {
	case "-":
		if strings.HasPrefix(rest, "\r\n") {
			return 2
		}
		if strings.HasPrefix(rest, "\n") {
			return 1
		}
	case "_":
		return len(rest) - len(strings.TrimLeft(rest, " \t\r\n"))
	}
	return 0
}

// evaluate runs a single helper call and returns its escaped output.
func (r *Renderer) evaluate(path, expr string, stack []string) (string, error) {
	call := helperCallPattern.FindStringSubmatch(expr)
	if call == nil {
		return "", fmt.Errorf("unsupported expression %q", expr)
	}
	name := call[1]
	if !r.helpers[name] {
		return "", fmt.Errorf("unknown helper %q", name)
	}
	include := call[2]
	if include == "" {
		include = call[3]
	}
	if include == "" {
		return "", errors.New("empty include path")
	}

	target := include
	if !filepath.IsAbs(target) {
		target = filepath.Join(filepath.Dir(path), include)
	}
	target = filepath.Clean(target)

	for _, p := range stack {
		if p == target {
			return "", fmt.Errorf("%w: %s", ErrIncludeCycle, strings.Join(append(stack, target), " -> "))
		}
	}

	data, err := r.readFile(target)
	if err != nil {
		return "", fmt.Errorf("failed to read included file: %w", err)
	}

	rendered, err := r.render(target, string(data), append(stack[:len(stack):len(stack)], target))
	if err != nil {
		return "", err
	}
	return Stringify(rendered)
}

// Stringify JSON-escapes s and strips the enclosing quotes, so the result can
// be placed inside an existing JSON string or used as raw text.
func Stringify(s string) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return "", err
	}
	quoted := strings.TrimSuffix(buf.String(), "\n")
	return quoted[1 : len(quoted)-1], nil
}
