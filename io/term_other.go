//go:build !linux

package io

import (
	"os"

	"github.com/pkg/errors"
)

// setRawIO is only supported on linux; other hosts keep cooked input.
func setRawIO(in *os.File) (func(), error) {
	return nil, errors.Errorf("raw terminal not supported for %v", in.Name())
}
