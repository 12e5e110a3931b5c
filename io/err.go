package io

import (
	"github.com/pkg/errors"

	"github.com/avmlang/avm/translate"
)

var f = translate.From

var (
	// Nvram errors
	ErrNvramPath  = errors.New(f("nvram path not set"))
	ErrNvramShort = errors.New(f("nvram file truncated"))

	// Console errors
	ErrConsoleInput = errors.New(f("console has no input"))
)
