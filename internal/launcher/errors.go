package launcher

// processNotFoundError maps to 404 in the control API.
type processNotFoundError struct{ name string }

func (e processNotFoundError) Error() string { return "process not found: " + e.name }

// ErrProcessNotFound constructs a processNotFoundError.
func ErrProcessNotFound(name string) error { return processNotFoundError{name: name} }

// IsProcessNotFound reports whether err names an unknown process.
func IsProcessNotFound(err error) bool {
	_, ok := err.(processNotFoundError)
	return ok
}

// alreadyRunningError signals a duplicate start for 409 mapping.
type alreadyRunningError struct{ name string }

func (e alreadyRunningError) Error() string { return "process already running: " + e.name }

// ErrAlreadyRunning constructs an alreadyRunningError.
func ErrAlreadyRunning(name string) error { return alreadyRunningError{name: name} }

// IsAlreadyRunning reports whether err indicates a duplicate start.
func IsAlreadyRunning(err error) bool {
	_, ok := err.(alreadyRunningError)
	return ok
}
