package pkg

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestPgErrorCodes(t *testing.T) {
	wrapped := func(code string) error {
		return fmt.Errorf("exec: %w", &pgconn.PgError{Code: code})
	}

	assert.True(t, IsDiskFullError(wrapped("53100")))
	assert.False(t, IsDiskFullError(wrapped("53200")))
	assert.True(t, IsQuotaError(wrapped("53200")))
	assert.True(t, IsQuotaError(wrapped("54000")))
	assert.False(t, IsQuotaError(wrapped("53100")))

	plain := errors.New("53100")
	assert.False(t, IsDiskFullError(plain))
	assert.False(t, IsQuotaError(nil))
}
