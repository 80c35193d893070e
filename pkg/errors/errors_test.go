package errors

import (
	stdErrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errSentinel = stdErrors.New("batch not found")

func TestWrapKeepsCauseReachable(t *testing.T) {
	err := Wrap(CodeNotFound, errSentinel, "batch 42 not found")

	assert.True(t, stdErrors.Is(err, errSentinel))
	assert.Equal(t, CodeNotFound, err.Code())
	assert.Contains(t, err.Error(), "batch 42 not found")
}

func TestAsFindsTypedErrorThroughWrapping(t *testing.T) {
	typed := New(CodeValidation, "bad input")
	wrapped := fmt.Errorf("upload: %w", typed)

	got := As(wrapped)
	require.NotNil(t, got)
	assert.Equal(t, CodeValidation, got.Code())
	assert.Equal(t, CodeValidation, CodeOf(wrapped))
	assert.Equal(t, CodeInternal, CodeOf(stdErrors.New("plain")))
	assert.Nil(t, As(nil))
}

func TestMetadataForUnknownCodeDefaultsToInternal(t *testing.T) {
	meta := MetadataFor(Code("NOPE"))
	assert.Equal(t, http.StatusInternalServerError, meta.HTTPStatus)
	assert.Equal(t, http.StatusUnprocessableEntity, MetadataFor(CodeStateConflict).HTTPStatus)
	assert.True(t, MetadataFor(CodeNotFound).DetailsAllowed)
}

func TestDumpExtractsPostgresDetails(t *testing.T) {
	pgErr := &pgconn.PgError{Code: "23505", ConstraintName: "agents_email_key", TableName: "agents"}
	err := Wrap(CodeConflict, pgErr, "agent email taken")

	dump := Dump(err)
	assert.Equal(t, CodeConflict, dump.Code)
	assert.Equal(t, "23505", dump.PGCode)
	assert.Equal(t, "agents_email_key", dump.PGConstraint)
	assert.Len(t, dump.Chain, 2)

	fields := dump.Fields()
	assert.Equal(t, "agents", fields["pg_table"])
	_, hasSQLite := fields["sqlite_code"]
	assert.False(t, hasSQLite)
}

func TestDumpNil(t *testing.T) {
	assert.Equal(t, ErrorDump{}, Dump(nil))
}

func TestFormattedConstructorsAndPredicates(t *testing.T) {
	err := Wrapf(CodeNotFound, errSentinel, "batch %s not found", "1700000000000")
	assert.Equal(t, "batch 1700000000000 not found", err.Message())
	assert.ErrorIs(t, err, errSentinel)

	wrapped := fmt.Errorf("lookup: %w", err)
	assert.True(t, IsCode(wrapped, CodeNotFound))
	assert.False(t, IsCode(wrapped, CodeValidation))
	assert.False(t, IsCode(nil, CodeInternal))

	assert.Equal(t, "file is required", Newf(CodeValidation, "%s is required", "file").Message())

	assert.True(t, Retryable(New(CodeDependency, "redis down")))
	assert.True(t, Retryable(stdErrors.New("untyped")))
	assert.False(t, Retryable(New(CodeValidation, "bad")))
	assert.False(t, Retryable(nil))
}
