package db

import (
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/require"
)

// The advisory-lock-then-recompute pattern in the budget and allocation
// writers only holds at read committed: the re-check after the lock wait
// must observe rows committed by the previous lock holder. Repeatable
// read pins the snapshot at the transaction's first statement, which runs
// before the lock wait, so two racers could both pass a stale sum.
func TestGovernanceTxRunsReadCommitted(t *testing.T) {
	require.Equal(t, pgx.ReadCommitted, TxOptions.IsoLevel)
}
