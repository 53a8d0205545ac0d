package migrate

import (
	"fmt"
	"io/fs"
	"os"
	"regexp"
	"strings"

	"go.uber.org/multierr"
)

var sqlFileRe = regexp.MustCompile(`^(\d{14})_[a-z0-9_]+\.sql$`)

// ValidateDir checks every migration in dir and reports all problems at once.
func ValidateDir(dir string) error {
	if dir == "" {
		return fmt.Errorf("dir is required")
	}
	if _, err := os.Stat(dir); err != nil {
		return fmt.Errorf("read dir %q: %w", dir, err)
	}
	return ValidateFS(os.DirFS(dir))
}

// ValidateFS checks the .sql files at the root of fsys: the filename must be
// <YYYYMMDDHHMMSS>_<name>.sql, versions must be unique, and the Up annotation
// must precede the Down annotation.
func ValidateFS(fsys fs.FS) error {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("read migrations: %w", err)
	}

	var errs error
	seen := map[string]string{}
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".sql") {
			continue
		}

		m := sqlFileRe.FindStringSubmatch(name)
		if m == nil {
			errs = multierr.Append(errs, fmt.Errorf("invalid migration filename %q (expected YYYYMMDDHHMMSS_name.sql)", name))
			continue
		}
		if prev, ok := seen[m[1]]; ok {
			errs = multierr.Append(errs, fmt.Errorf("duplicate migration version %s in %q and %q", m[1], prev, name))
		}
		seen[m[1]] = name

		b, err := fs.ReadFile(fsys, name)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("read %q: %w", name, err))
			continue
		}
		errs = multierr.Append(errs, checkAnnotations(name, string(b)))
	}

	if len(seen) == 0 && errs == nil {
		return fmt.Errorf("no migrations found")
	}
	return errs
}

func checkAnnotations(name, body string) error {
	up := strings.Index(body, "-- +goose Up")
	down := strings.Index(body, "-- +goose Down")
	switch {
	case up < 0:
		return fmt.Errorf("migration %q missing \"-- +goose Up\"", name)
	case down < 0:
		return fmt.Errorf("migration %q missing \"-- +goose Down\"", name)
	case down < up:
		return fmt.Errorf("migration %q declares Down before Up", name)
	}
	return nil
}
