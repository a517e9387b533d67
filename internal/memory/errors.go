package memory

// blockedError signals a refused admission for 507/429-style mapping.
type blockedError struct{ msg string }

func (e blockedError) Error() string { return e.msg }

// ErrBlocked constructs an admission refusal.
func ErrBlocked(msg string) error { return blockedError{msg: msg} }

// IsBlocked reports whether err is an admission refusal.
func IsBlocked(err error) bool {
	_, ok := err.(blockedError)
	return ok
}
