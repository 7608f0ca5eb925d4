package cli

import (
	"bootsect/config"
	"bootsect/ledger"

	"github.com/syndtr/goleveldb/leveldb"
)

func OpenLedger(homeDir string) (*leveldb.DB, error) {
	if err := config.EnsureHomeDir(homeDir); err != nil {
		return nil, err
	}
	return ledger.Open(config.ExpandLedgerPath(homeDir))
}
