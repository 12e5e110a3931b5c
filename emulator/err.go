package emulator

import (
	"errors"

	"github.com/avmlang/avm/translate"
)

var f = translate.From

var (
	ErrConfigKey     = errors.New(f("unknown configuration key"))
	ErrNoProgram     = errors.New(f("no program loaded"))
	ErrProgramFormat = errors.New(f("unrecognized program file"))
)

// ErrRuntime indicates the location of a runtime error.
type ErrRuntime struct {
	LineNo int
	Err    error
}

func (err *ErrRuntime) Error() string {
	if err.LineNo == 0 {
		return err.Err.Error()
	}
	return f("line %d %v", err.LineNo, err.Err)
}

func (err *ErrRuntime) Unwrap() error {
	return err.Err
}
