package candidate

// OperationalError is a cache or store failure during a submission.
// Its text is the underlying cause's text.
type OperationalError struct {
	Op  string
	Err error
}

func (e *OperationalError) Error() string {
	return e.Err.Error()
}

func (e *OperationalError) Unwrap() error {
	return e.Err
}
