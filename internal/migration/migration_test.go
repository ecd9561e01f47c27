package migration

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

var _ Migrator = (*MigrationRunner)(nil)

func TestStatementsAreIdempotent(t *testing.T) {
	r := NewRunner()
	assert.Equal(t, "1.0.0", r.Version())

	stmts := r.Statements()
	assert.Len(t, stmts, 4)
	for _, s := range stmts {
		assert.Contains(t, s, "IF NOT EXISTS")
	}
	assert.True(t, strings.Contains(stmts[0], "dashboard_charts"))
	assert.True(t, strings.Contains(stmts[1], "dashboard_filters"))
	assert.Contains(t, stmts[0], "PRIMARY KEY (dashboard, position)")
}
