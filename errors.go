package boltzgen

import "fmt"

//Errors

// Error is the interface for errors that all packages in this library
// implement. The Decorate method allows to add and retrieve info from the
// error, without changing its type or wrapping it around something else.
type Error interface {
	Error() string
	Decorate(string) []string //Decorate adds the given string to the "decoration" slice of the error, and returns the resulting slice. If given an empty string, it only returns the current slice. The slice should contain the names of the functions in the calling stack, plus, for each, any relevant extra information.
}

// CError is the concrete error type used across the library.
type CError struct {
	msg  string
	deco []string
}

func (err CError) Error() string { return err.msg }

// Decorate adds the dec string to the decoration slice of strings of the
// error, and returns the resulting slice.
func (err CError) Decorate(dec string) []string {
	if dec != "" {
		err.deco = append(err.deco, dec)
	}
	return err.deco
}

// ValidationError is returned on construction when the inputs can not
// produce a working transform: a missing or mis-shaped reference dataset,
// a wrong anchor count, or a reference atom that never becomes Cartesian.
// No partial object is ever produced.
type ValidationError struct {
	CError
}

// CyclicDependencyError is returned on construction when the Z-matrix
// placement dependencies contain a cycle, so no topological order exists.
type CyclicDependencyError struct {
	CError
}

func validationErr(caller, format string, a ...interface{}) ValidationError {
	return ValidationError{CError{fmt.Sprintf(format, a...), []string{caller}}}
}

func cyclicErr(caller, format string, a ...interface{}) CyclicDependencyError {
	return CyclicDependencyError{CError{fmt.Sprintf(format, a...), []string{caller}}}
}
