package sdutils

import "fmt"

// Status is the result of every library operation.
type Status int32

const (
	Success             Status = 0
	ModuleNotFound      Status = -1
	ModuleMissingExport Status = -2
	MaxCallbacks        Status = -3
	NotFound            Status = -4
	InvalidArgument     Status = -5
	Failed              Status = -10
	LibUninitialized    Status = -20
	UnsupportedVersion  Status = -99
	UnsupportedCommand  Status = -100
	UnknownError        Status = -0x100
)

func (s Status) String() string {
	switch s {
	case Success:
		return "SUCCESS"
	case ModuleNotFound:
		return "MODULE_NOT_FOUND"
	case ModuleMissingExport:
		return "MODULE_MISSING_EXPORT"
	case MaxCallbacks:
		return "MAX_CALLBACKS"
	case NotFound:
		return "NOT_FOUND"
	case InvalidArgument:
		return "INVALID_ARGUMENT"
	case Failed:
		return "FAILED"
	case LibUninitialized:
		return "LIB_UNINITIALIZED"
	case UnsupportedVersion:
		return "UNSUPPORTED_VERSION"
	case UnsupportedCommand:
		return "UNSUPPORTED_COMMAND"
	case UnknownError:
		return "UNKNOWN_ERROR"
	default:
		return fmt.Sprintf("STATUS(%d)", int32(s))
	}
}

// Error makes a Status usable as an error value, see [Status.Err].
func (s Status) Error() string {
	return "sdutils: " + s.String()
}

// Err returns nil for Success, otherwise the Status itself.
func (s Status) Err() error {
	if s == Success {
		return nil
	}
	return s
}

// Ok reports whether s is Success.
func (s Status) Ok() bool {
	return s == Success
}
