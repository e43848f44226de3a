package qb

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidArgument is returned when a builder call receives input it cannot represent.
	ErrInvalidArgument = errors.New("qb: invalid argument")
	// ErrStructure is returned when nodes are put together in a way the tree does not allow.
	ErrStructure = errors.New("qb: invalid structure")
	// ErrCompile is returned when a statement is not complete enough to be compiled.
	ErrCompile = errors.New("qb: cannot compile")
)

func invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, fmt.Sprintf(format, args...))
}

func structuref(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrStructure, fmt.Sprintf(format, args...))
}

func compilef(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrCompile, fmt.Sprintf(format, args...))
}

func IsInvalidArgument(err error) bool { return errors.Is(err, ErrInvalidArgument) }

func IsStructure(err error) bool { return errors.Is(err, ErrStructure) }

func IsCompile(err error) bool { return errors.Is(err, ErrCompile) }
