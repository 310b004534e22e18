package postgres

import (
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mitchelldurbincs/gasgrid/internal/store"
	"github.com/mitchelldurbincs/gasgrid/internal/store/storetest"
)

// Runs only against a disposable database: every table is truncated per subtest.
func TestStoreContract(t *testing.T) {
	dsn := os.Getenv("GASGRID_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("GASGRID_TEST_POSTGRES_DSN not set")
	}

	storetest.Run(t, func(t *testing.T) store.Store {
		s, err := Open(dsn)
		require.NoError(t, err)
		require.NoError(t, s.DB.Exec("TRUNCATE match_results, actions, tiles, player_states, games, players").Error)
		t.Cleanup(func() { s.Close() })
		return s
	})
}
