package dbtypes

import (
	"database/sql/driver"
	"fmt"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

// StringArray maps to a Postgres text[] column and to a text column holding the
// same array literal on SQLite.
type StringArray []string

// GormDBDataType picks the column type per dialect.
func (StringArray) GormDBDataType(db *gorm.DB, _ *schema.Field) string {
	if db.Dialector.Name() == "postgres" {
		return "text[]"
	}
	return "text"
}

func (a *StringArray) Scan(src any) error {
	if src == nil {
		*a = StringArray{}
		return nil
	}

	switch v := src.(type) {
	case string:
		return a.parseFromString(v)
	case []byte:
		return a.parseFromString(string(v))
	default:
		return fmt.Errorf("StringArray: unsupported Scan type %T", src)
	}
}

func (a StringArray) Value() (driver.Value, error) {
	if len(a) == 0 {
		return "{}", nil
	}
	parts := make([]string, 0, len(a))
	for _, s := range a {
		parts = append(parts, quoteElement(s))
	}
	return "{" + strings.Join(parts, ",") + "}", nil
}

func quoteElement(s string) string {
	escaped := strings.ReplaceAll(s, `\`, `\\`)
	escaped = strings.ReplaceAll(escaped, `"`, `\"`)
	return `"` + escaped + `"`
}

func (a *StringArray) parseFromString(s string) error {
	s = strings.TrimSpace(s)
	if s == "{}" || s == "" {
		*a = StringArray{}
		return nil
	}
	if !strings.HasPrefix(s, "{") || !strings.HasSuffix(s, "}") {
		return fmt.Errorf("StringArray: malformed literal %q", s)
	}
	body := s[1 : len(s)-1]

	out := []string{}
	var (
		current  strings.Builder
		quoted   bool
		escaping bool
	)
	for _, r := range body {
		switch {
		case escaping:
			current.WriteRune(r)
			escaping = false
		case r == '\\' && quoted:
			escaping = true
		case r == '"':
			quoted = !quoted
		case r == ',' && !quoted:
			out = append(out, strings.TrimSpace(current.String()))
			current.Reset()
		default:
			current.WriteRune(r)
		}
	}
	if quoted {
		return fmt.Errorf("StringArray: unterminated quote in %q", s)
	}
	out = append(out, strings.TrimSpace(current.String()))
	*a = StringArray(out)
	return nil
}
