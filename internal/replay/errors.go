package replay

import "fmt"

// ErrorKind classifies the failure stages of replay decoding.
type ErrorKind int

const (
	// ErrZip covers malformed archive containers.
	ErrZip ErrorKind = iota
	// ErrIO covers filesystem and stream failures.
	ErrIO
	// ErrPHP covers PHP unserialize failures in game snapshots and turn payloads.
	ErrPHP
	// ErrJSON covers action payloads that do not decode as JSON.
	ErrJSON
	// ErrInvalidTurnData covers turn entries whose framing does not match the expected layout.
	ErrInvalidTurnData
)

// Error describes a replay decoding failure with the archive path that produced it.
type Error struct {
	Kind ErrorKind
	Path string
	Err  error
}

// Error renders the failure with its stage and, when known, the archive entry path.
func (e *Error) Error() string {
	if e == nil {
		return "replay error"
	}
	switch e.Kind {
	case ErrZip:
		return fmt.Sprintf("Zip error: %v", e.Err)
	case ErrIO:
		return fmt.Sprintf("IO error: %v", e.Err)
	case ErrPHP:
		if e.Path != "" {
			return fmt.Sprintf("PHP error at %s: %v", e.Path, e.Err)
		}
		return fmt.Sprintf("PHP error: %v", e.Err)
	case ErrJSON:
		if e.Path != "" {
			return fmt.Sprintf("JSON error at %s: %v", e.Path, e.Err)
		}
		return fmt.Sprintf("JSON error: %v", e.Err)
	case ErrInvalidTurnData:
		if e.Path != "" {
			return fmt.Sprintf("Invalid turn data at %s: %v", e.Path, e.Err)
		}
		return fmt.Sprintf("Invalid turn data: %v", e.Err)
	default:
		return fmt.Sprintf("replay error: %v", e.Err)
	}
}

// Unwrap exposes the underlying cause for errors.Is and errors.As chains.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func zipError(err error) error {
	return &Error{Kind: ErrZip, Err: err}
}

func ioError(err error) error {
	return &Error{Kind: ErrIO, Err: err}
}

func phpError(path string, err error) error {
	return &Error{Kind: ErrPHP, Path: path, Err: err}
}

func jsonError(path string, err error) error {
	return &Error{Kind: ErrJSON, Path: path, Err: err}
}

func turnDataError(path string, err error) error {
	return &Error{Kind: ErrInvalidTurnData, Path: path, Err: err}
}
