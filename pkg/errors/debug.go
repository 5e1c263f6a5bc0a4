package errors

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

// StoreError is the driver-neutral view of a database failure.
type StoreError struct {
	Engine     string `json:"engine"`
	Code       string `json:"code,omitempty"`
	Constraint string `json:"constraint,omitempty"`
	Table      string `json:"table,omitempty"`
	Column     string `json:"column,omitempty"`
	Detail     string `json:"detail,omitempty"`
	Message    string `json:"message,omitempty"`
}

// ErrorDump is what gets logged for a failed request: the typed code, the
// unwrap chain and, when a database refused the write, the store details.
type ErrorDump struct {
	TopMessage string      `json:"top_message"`
	Code       Code        `json:"code,omitempty"`
	Chain      []string    `json:"chain,omitempty"`
	Store      *StoreError `json:"store,omitempty"`
}

const sqliteConstraintMarker = "constraint failed: "

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
	d.Store = storeError(err)
	return d
}

// LogFields flattens the dump for structured logging; empty values are left out.
func (d ErrorDump) LogFields() map[string]any {
	fields := map[string]any{"error_chain": d.Chain}
	if d.Code != "" {
		fields["error_code"] = string(d.Code)
	}
	if s := d.Store; s != nil {
		prefix := "db_"
		for key, value := range map[string]string{
			"engine":     s.Engine,
			"code":       s.Code,
			"constraint": s.Constraint,
			"table":      s.Table,
			"column":     s.Column,
			"detail":     s.Detail,
			"message":    s.Message,
		} {
			if value != "" {
				fields[prefix+key] = value
			}
		}
	}
	return fields
}

func storeError(err error) *StoreError {
	var pgxErr *pgconn.PgError
	if errors.As(err, &pgxErr) {
		return &StoreError{
			Engine:     "postgres",
			Code:       pgxErr.Code,
			Constraint: pgxErr.ConstraintName,
			Table:      pgxErr.TableName,
			Column:     pgxErr.ColumnName,
			Detail:     pgxErr.Detail,
			Message:    pgxErr.Message,
		}
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return &StoreError{
			Engine:     "postgres",
			Code:       string(pqErr.Code),
			Constraint: pqErr.Constraint,
			Table:      pqErr.Table,
			Column:     pqErr.Column,
			Detail:     pqErr.Detail,
			Message:    pqErr.Message,
		}
	}

	// sqlite reports "UNIQUE constraint failed: requests.reg_number".
	msg := err.Error()
	idx := strings.Index(msg, sqliteConstraintMarker)
	if idx < 0 {
		return nil
	}
	start := strings.LastIndex(msg[:idx], ": ") + 1
	if start > 0 {
		start++
	}
	target := strings.TrimSpace(msg[idx+len(sqliteConstraintMarker):])
	s := &StoreError{
		Engine:     "sqlite",
		Code:       strings.TrimSpace(msg[start:idx]),
		Constraint: target,
		Message:    msg[start:],
	}
	if table, column, ok := strings.Cut(target, "."); ok && !strings.Contains(column, ",") {
		s.Table, s.Column = table, column
	}
	return s
}
