package config

import (
	"os"
	"path"

	"github.com/mitchellh/go-homedir"
	"github.com/pkg/errors"
)

const LedgerPath = "ledger"

func ExpandHomePath(p string) string {
	res, err := homedir.Expand(p)
	if err != nil {
		panic(err)
	}
	return res
}

func ExpandLedgerPath(homePath string) string {
	return path.Join(homePath, LedgerPath)
}

func HomeDirExists(path string) (bool, error) {
	stat, err := os.Stat(path)
	if os.IsNotExist(err) {
		return false, nil
	} else if err != nil {
		return false, err
	}

	if !stat.IsDir() {
		return false, errors.New("home dir path exists, but is a file")
	}

	return true, nil
}

func EnsureHomeDir(path string) error {
	exists, err := HomeDirExists(path)
	if err != nil {
		return err
	}
	if !exists {
		return errors.New("home directory does not exist - try running bootsect init")
	}
	return nil
}

func InitHomeDir(homePath string) error {
	if err := os.MkdirAll(homePath, 0700); err != nil {
		return err
	}
	if err := WriteIdentity(homePath, NewIdentity()); err != nil {
		return err
	}
	if err := os.MkdirAll(ExpandLedgerPath(homePath), 0700); err != nil {
		return err
	}
	return WriteDefaultConfigFile(homePath)
}
