package errs

// ErrorKind identifies a kind of internal error.
// fully support for errors.Is and errors.As.
type ErrorKind string

const (
	// NotFound is returned when a requested item is not found.
	NotFound = ErrorKind("Not Found")

	InternalError      = ErrorKind("Internal Error")
	SomethingWentWrong = ErrorKind("Something Went Wrong")
	InvalidArgument    = ErrorKind("Invalid Argument")
	Unsupported        = ErrorKind("Unsupported")
	ConflictSetting    = ErrorKind("Conflict Setting")
	Timeout            = ErrorKind("Timeout")
	Closed             = ErrorKind("Closed")
)

// Pipeline fault classes. A record file that raises any of them is never committed.
const (
	// DataIntegrity is returned when a record item is malformed or contradicts protocol invariants.
	DataIntegrity = ErrorKind("Data Integrity")

	// UnresolvedReference is returned when an alias or EVM address can't be mapped to an entity id.
	UnresolvedReference = ErrorKind("Unresolved Reference")

	// Precondition is returned on a programming error (nil or invalid argument, invalid state transition).
	Precondition = ErrorKind("Precondition Failed")

	// Storage is returned when the storage collaborator fails to persist or commit.
	Storage = ErrorKind("Storage")
)

// Error satisfies the error interface and prints human-readable errors.
func (e ErrorKind) Error() string {
	return string(e)
}
