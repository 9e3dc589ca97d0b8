package errors

import (
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDumpCapturesPgxDiagnostics(t *testing.T) {
	pgErr := &pgconn.PgError{Code: "23505", ConstraintName: "jobs_quote_id_key", TableName: "jobs", Message: "duplicate key"}
	err := Wrap(CodeDependency, fmt.Errorf("insert job: %w", pgErr), "create job")

	dump := Dump(err)
	assert.Equal(t, CodeDependency, dump.Code)
	assert.Equal(t, "23505", dump.PGCode)
	assert.Equal(t, "jobs_quote_id_key", dump.PGConstraint)
	require.GreaterOrEqual(t, len(dump.Chain), 3)

	fields := dump.Fields()
	assert.Equal(t, "jobs", fields["pg_table"])
	_, hasColumn := fields["pg_column"]
	assert.False(t, hasColumn)
}

func TestDumpNil(t *testing.T) {
	assert.Equal(t, ErrorDump{}, Dump(nil))
}
