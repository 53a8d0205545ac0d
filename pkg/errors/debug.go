package errors

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"
)

// ErrorDump flattens an error chain plus any driver diagnostics for logging.
type ErrorDump struct {
	TopMessage string `json:"top_message"`
	Code       Code   `json:"code,omitempty"`

	Chain []string `json:"chain,omitempty"`

	PGCode       string `json:"pg_code,omitempty"`
	PGConstraint string `json:"pg_constraint,omitempty"`
	PGTable      string `json:"pg_table,omitempty"`
	PGColumn     string `json:"pg_column,omitempty"`
	PGDetail     string `json:"pg_detail,omitempty"`
	PGMessage    string `json:"pg_message,omitempty"`

	SQLiteCode string `json:"sqlite_code,omitempty"`
}

func Dump(err error) ErrorDump {
	if err == nil {
		return ErrorDump{}
	}

	d := ErrorDump{TopMessage: err.Error()}
	if te := As(err); te != nil {
		d.Code = te.Code()
	}
	for e := err; e != nil; e = errors.Unwrap(e) {
		d.Chain = append(d.Chain, fmt.Sprintf("%T: %v", e, e))
	}

	var pgxErr *pgconn.PgError
	var pqErr *pq.Error
	var liteErr sqlite3.Error
	switch {
	case errors.As(err, &pgxErr):
		d.PGCode = pgxErr.Code
		d.PGConstraint = pgxErr.ConstraintName
		d.PGTable = pgxErr.TableName
		d.PGColumn = pgxErr.ColumnName
		d.PGDetail = pgxErr.Detail
		d.PGMessage = pgxErr.Message
	case errors.As(err, &pqErr):
		d.PGCode = string(pqErr.Code)
		d.PGConstraint = pqErr.Constraint
		d.PGTable = pqErr.Table
		d.PGColumn = pqErr.Column
		d.PGDetail = pqErr.Detail
		d.PGMessage = pqErr.Message
	case errors.As(err, &liteErr):
		d.SQLiteCode = liteErr.ExtendedCode.Error()
	}
	return d
}

// Fields returns the dump as log fields. Driver fields are only present when set.
func (d ErrorDump) Fields() map[string]any {
	fields := map[string]any{
		"error":       d.TopMessage,
		"error_code":  d.Code,
		"error_chain": d.Chain,
	}
	optional := map[string]string{
		"pg_code":       d.PGCode,
		"pg_constraint": d.PGConstraint,
		"pg_table":      d.PGTable,
		"pg_column":     d.PGColumn,
		"pg_detail":     d.PGDetail,
		"pg_message":    d.PGMessage,
		"sqlite_code":   d.SQLiteCode,
	}
	for k, v := range optional {
		if v != "" {
			fields[k] = v
		}
	}
	return fields
}
