package io

import (
	"io"
	"os"

	"github.com/pkg/errors"
)

// NVRAM_SIZE is the size in bytes of the persistent store.
const NVRAM_SIZE = 65536

// Nvram is the file backed persistent byte store. The file is opened
// on first access and stays open until Close.
type Nvram struct {
	Path string

	file *os.File
}

// IsOpen returns true if the backing file is currently open.
func (nv *Nvram) IsOpen() bool {
	return nv.file != nil
}

// open creates the zero filled backing file if needed, and opens it
// for read and write.
func (nv *Nvram) open() (err error) {
	if nv.file != nil {
		return
	}

	if len(nv.Path) == 0 {
		err = ErrNvramPath
		return
	}

	_, err = os.Stat(nv.Path)
	if errors.Is(err, os.ErrNotExist) {
		var file *os.File
		file, err = os.OpenFile(nv.Path, os.O_RDWR|os.O_CREATE|os.O_EXCL, 0644)
		if err != nil {
			return errors.Wrapf(err, "nvram create %v", nv.Path)
		}
		_, err = file.Write(make([]byte, NVRAM_SIZE))
		if err != nil {
			file.Close()
			return errors.Wrapf(err, "nvram fill %v", nv.Path)
		}
		err = file.Close()
		if err != nil {
			return errors.Wrapf(err, "nvram create %v", nv.Path)
		}
	} else if err != nil {
		return errors.Wrapf(err, "nvram stat %v", nv.Path)
	}

	nv.file, err = os.OpenFile(nv.Path, os.O_RDWR, 0)
	if err != nil {
		return errors.Wrapf(err, "nvram open %v", nv.Path)
	}

	return
}

// LoadByte reads the byte at address.
func (nv *Nvram) LoadByte(address uint16) (value byte, err error) {
	err = nv.open()
	if err != nil {
		return
	}

	var one [1]byte
	_, err = nv.file.ReadAt(one[:], int64(address))
	if err == io.EOF {
		err = errors.Wrapf(ErrNvramShort, "nvram read @%d", address)
		return
	}
	if err != nil {
		err = errors.Wrapf(err, "nvram read @%d", address)
		return
	}

	value = one[0]
	return
}

// StoreByte writes the byte at address.
func (nv *Nvram) StoreByte(address uint16, value byte) (err error) {
	err = nv.open()
	if err != nil {
		return
	}

	_, err = nv.file.WriteAt([]byte{value}, int64(address))
	if err != nil {
		err = errors.Wrapf(err, "nvram write @%d", address)
	}

	return
}

// Close releases the backing file. Closing a closed Nvram is a no-op.
func (nv *Nvram) Close() (err error) {
	if nv.file == nil {
		return
	}

	err = nv.file.Close()
	nv.file = nil
	if err != nil {
		err = errors.Wrapf(err, "nvram close %v", nv.Path)
	}

	return
}
