// Package database provisions the Orders table on both backends.
package database

import (
	"bytes"
	"embed"
	"fmt"
	"regexp"
	"strings"
	"text/template"
)

//go:embed schema/*.sql
var schemaFS embed.FS

var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// ValidateIdentifier rejects database names that would need quoting.
// They are interpolated into DDL, which cannot take parameters.
func ValidateIdentifier(name string) error {
	if !identifierPattern.MatchString(name) {
		return fmt.Errorf("invalid database name %q: want letters, digits and underscores", name)
	}
	return nil
}

// schemaStatements renders an embedded schema file and splits it into statements.
func schemaStatements(file, database string) ([]string, error) {
	if err := ValidateIdentifier(database); err != nil {
		return nil, err
	}

	src, err := schemaFS.ReadFile("schema/" + file)
	if err != nil {
		return nil, fmt.Errorf("read schema: %w", err)
	}
	tmpl, err := template.New(file).Parse(string(src))
	if err != nil {
		return nil, fmt.Errorf("parse schema: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, struct{ Database string }{database}); err != nil {
		return nil, fmt.Errorf("render schema: %w", err)
	}
	return splitStatements(buf.String()), nil
}

// splitStatements splits a script on semicolons, dropping empty statements.
func splitStatements(script string) []string {
	var out []string
	for _, stmt := range strings.Split(script, ";") {
		if stmt = strings.TrimSpace(stmt); stmt != "" {
			out = append(out, stmt)
		}
	}
	return out
}
