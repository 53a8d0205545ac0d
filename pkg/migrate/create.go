package migrate

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

var nameSanitizeRe = regexp.MustCompile(`[^a-z0-9_]+`)

// now is replaced in tests.
var now = func() time.Time { return time.Now().UTC() }

// SanitizeName lowercases a migration name and collapses anything outside
// [a-z0-9_] into underscores.
func SanitizeName(name string) string {
	safe := strings.ToLower(strings.TrimSpace(name))
	safe = strings.ReplaceAll(safe, " ", "_")
	safe = nameSanitizeRe.ReplaceAllString(safe, "_")
	return strings.Trim(safe, "_")
}

// CreateSQLMigration writes an empty goose migration named
// <dir>/<YYYYMMDDHHMMSS>_<name>.sql and returns its path.
func CreateSQLMigration(dir string, name string) (string, error) {
	if dir == "" {
		return "", fmt.Errorf("dir is required")
	}
	if name == "" {
		return "", fmt.Errorf("name is required")
	}

	safe := SanitizeName(name)
	if safe == "" {
		return "", fmt.Errorf("name %q results in empty sanitized filename", name)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("mkdir %q: %w", dir, err)
	}

	filename := fmt.Sprintf("%s_%s.sql", now().Format("20060102150405"), safe)
	fullpath := filepath.Join(dir, filename)
	if _, err := os.Stat(fullpath); err == nil {
		return "", fmt.Errorf("migration already exists: %s", fullpath)
	}

	body := fmt.Sprintf(`-- +goose Up
-- +goose StatementBegin
-- %[1]s
-- +goose StatementEnd

-- +goose Down
-- +goose StatementBegin
-- rollback %[1]s
-- +goose StatementEnd
`, safe)

	if err := os.WriteFile(fullpath, []byte(body), 0o644); err != nil {
		return "", fmt.Errorf("write migration %q: %w", fullpath, err)
	}
	return fullpath, nil
}
