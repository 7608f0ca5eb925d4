// Package medium writes boot images to, and reads boot sectors from, files,
// raw disk images and block devices.
package medium

import (
	"io"
	"os"
	"path/filepath"

	"bootsect/image"
	"bootsect/log"

	"github.com/pkg/errors"
)

var (
	ErrMediumBusy   = errors.New("medium is being written by another build")
	ErrShortWrite   = errors.New("short write to medium")
	ErrShortMedium  = errors.New("medium is smaller than one sector")
	ErrIsADirectory = errors.New("medium path is a directory")
)

var logger = log.WithModule("medium")

var locks = newPathLocker()

// Write copies img verbatim to offset 0 of w.
func Write(w io.WriterAt, img image.BootImage) error {
	data := img.Bytes()
	n, err := w.WriteAt(data, 0)
	if err != nil {
		return errors.Wrap(err, "error writing boot sector")
	}
	if n != len(data) {
		return ErrShortWrite
	}
	return nil
}

// WriteFile writes img to the boot sector of path. Existing media larger
// than one sector (disk images, block devices) keep every byte past the
// boot sector.
func WriteFile(path string, img image.BootImage) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return errors.Wrap(err, "error resolving medium path")
	}
	if !locks.TryLock(abs) {
		return ErrMediumBusy
	}
	defer locks.Unlock(abs)

	exists, err := fileExists(abs)
	if err != nil {
		return err
	}
	if !exists {
		if err := os.MkdirAll(filepath.Dir(abs), 0700); err != nil {
			return errors.Wrap(err, "error creating medium directory")
		}
	}
	// no O_TRUNC: the rest of a disk image must survive
	f, err := os.OpenFile(abs, os.O_RDWR|os.O_CREATE, 0644)
	if err != nil {
		return errors.Wrap(err, "error opening medium")
	}
	if err := Write(f, img); err != nil {
		f.Close()
		return err
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return errors.Wrap(err, "error syncing medium")
	}
	logger.Info("wrote boot sector", "path", abs, "bytes", img.Len(), "created", !exists)
	return f.Close()
}

// ReadBootSector reads the first sectorSize bytes of r.
func ReadBootSector(r io.ReaderAt, sectorSize uint) ([]byte, error) {
	if sectorSize < image.SignatureSize {
		return nil, image.ErrInvalidSectorSize
	}
	buf := make([]byte, sectorSize)
	n, err := r.ReadAt(buf, 0)
	if uint(n) < sectorSize {
		if err == nil || err == io.EOF {
			return nil, ErrShortMedium
		}
		return nil, errors.Wrap(err, "error reading boot sector")
	}
	return buf, nil
}

// ReadFile reads the boot sector of the medium at path.
func ReadFile(path string, sectorSize uint) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "error opening medium")
	}
	defer f.Close()
	return ReadBootSector(f, sectorSize)
}

// LoadFile reads and verifies the boot sector of the medium at path.
func LoadFile(path string, sectorSize uint, signature uint16) (image.BootImage, error) {
	raw, err := ReadFile(path, sectorSize)
	if err != nil {
		return image.BootImage{}, err
	}
	return image.Load(raw, sectorSize, signature)
}

func fileExists(f string) (bool, error) {
	info, err := os.Stat(f)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if info.IsDir() {
		return false, ErrIsADirectory
	}
	return true, nil
}
