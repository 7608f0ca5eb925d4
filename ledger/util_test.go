package ledger

import (
	"testing"

	"bootsect/testutil/testfs"

	"github.com/stretchr/testify/require"
	"github.com/syndtr/goleveldb/leveldb"
)

func setupLevelDB(t *testing.T) (*leveldb.DB, func()) {
	tmp, rmDir := testfs.NewTempDir(t)
	db, err := leveldb.OpenFile(tmp, nil)
	require.NoError(t, err)

	return db, func() {
		require.NoError(t, db.Close())
		rmDir()
	}
}
