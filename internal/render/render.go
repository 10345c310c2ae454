// Package render substitutes {placeholder} variables into notification
// template strings.
package render

import (
	"fmt"
	"strings"
)

// ErrMissingVariable is wrapped by Render when the context lacks a variable
// the template references. Rendering is all-or-nothing: a template never
// reaches a user with an unfilled placeholder.
var ErrMissingVariable = fmt.Errorf("render: missing template variable")

// Render replaces every {name} occurrence in s with vars["name"].
// A '{' without a matching '}' is passed through literally.
func Render(s string, vars map[string]string) (string, error) {
	var b strings.Builder
	b.Grow(len(s))

	for {
		open := strings.IndexByte(s, '{')
		if open < 0 {
			b.WriteString(s)
			return b.String(), nil
		}
		close := strings.IndexByte(s[open:], '}')
		if close < 0 {
			b.WriteString(s)
			return b.String(), nil
		}
		close += open

		b.WriteString(s[:open])
		name := s[open+1 : close]
		val, ok := vars[name]
		if !ok {
			return "", fmt.Errorf("%w: {%s}", ErrMissingVariable, name)
		}
		b.WriteString(val)
		s = s[close+1:]
	}
}

// Pair renders a title and message template against the same variables.
// On any missing variable neither output is returned.
func Pair(title, message string, vars map[string]string) (string, string, error) {
	t, err := Render(title, vars)
	if err != nil {
		return "", "", err
	}
	m, err := Render(message, vars)
	if err != nil {
		return "", "", err
	}
	return t, m, nil
}
