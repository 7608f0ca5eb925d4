package ledger

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	"github.com/syndtr/goleveldb/leveldb"
)

func TestPrefixer(t *testing.T) {
	base := Prefixer("foo")

	tests := []struct {
		in  []byte
		out string
	}{
		{base("bar"), "foo/bar"},
		{base(), "foo"},
		{base(""), "foo/"},
		{base("a", "b"), "foo/a/b"},
	}
	for _, tt := range tests {
		require.Equal(t, tt.out, string(tt.in))
	}
}

func TestWithTx(t *testing.T) {
	db, done := setupLevelDB(t)
	defer done()

	require.NoError(t, WithTx(db, func(tx *leveldb.Transaction) error {
		return tx.Put([]byte("committed"), []byte{0x01}, nil)
	}))
	has, err := db.Has([]byte("committed"), nil)
	require.NoError(t, err)
	require.True(t, has)

	cbErr := errors.New("nope")
	err = WithTx(db, func(tx *leveldb.Transaction) error {
		require.NoError(t, tx.Put([]byte("discarded"), []byte{0x01}, nil))
		return cbErr
	})
	require.Equal(t, cbErr, err)
	has, err = db.Has([]byte("discarded"), nil)
	require.NoError(t, err)
	require.False(t, has)

	require.Panics(t, func() {
		_ = WithTx(db, func(tx *leveldb.Transaction) error {
			require.NoError(t, tx.Put([]byte("panicked"), []byte{0x01}, nil))
			panic("boom")
		})
	})
	has, err = db.Has([]byte("panicked"), nil)
	require.NoError(t, err)
	require.False(t, has)
}
