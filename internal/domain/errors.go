package domain

// Kind classifies a domain error for the HTTP boundary and for
// programmatic checks with errors.Is. Two domain errors match under
// errors.Is when their kinds are equal, regardless of message.
type Kind int

const (
	KindBadRequest Kind = iota
	KindUnauthorized
	KindInvalidToken
	KindNotFound
	KindForbidden
	KindNotPermitted
	KindDuplicate
	KindInternal
)

// Error is the (kind, detail) pair the boundary maps to the client
// error envelope {response_code, message}. Code is the client-facing
// response code, a finer-grained tracking id than the HTTP status.
type Error struct {
	Kind    Kind
	Code    int
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// Is matches by kind so callers can test against the sentinel values
// below without caring about the formatted message.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

var (
	ErrDuplicateEmail = &Error{KindDuplicate, 5, "This email already exist, please try a different email"}
	ErrDuplicatePhone = &Error{KindDuplicate, 6, "This phone number already exist, please try a different phone number"}

	// ErrUnableToCompleteRequest wraps any store or transport failure;
	// callers treat it as transient and opaque.
	ErrUnableToCompleteRequest = &Error{KindInternal, 8, "Unable to complete request"}

	ErrInvalidLogin = &Error{KindUnauthorized, 10, "Invalid email or password"}
	ErrInvalidToken = &Error{KindInvalidToken, 11, "Unable to authenticate request. Please login to continue"}

	ErrSessionExpired   = &Error{KindInvalidToken, 14, "Session expired. Please login again"}
	ErrPasswordMismatch = &Error{KindBadRequest, 17, "Passwords do not match"}

	// ErrInvalidPermission is the generic role-check failure.
	ErrInvalidPermission = &Error{KindForbidden, 19, "Sorry you do not have permission to perform this action"}

	// ErrDuplicateRole rejects assigning a role the user already holds.
	ErrDuplicateRole = &Error{KindDuplicate, 13, "a duplicate value for role already exists"}

	// Sentinels for errors.Is checks against the constructed variants.
	ErrNotFound     = &Error{KindNotFound, 3, "resource not found"}
	ErrForbidden    = &Error{KindForbidden, 22, "forbidden"}
	ErrNotPermitted = &Error{KindNotPermitted, 12, "action is not permitted"}
	ErrBadRequest   = &Error{KindBadRequest, 23, "bad request"}
)

// ResourceNotFound reports a missing task/user/privilege by name.
func ResourceNotFound(resource string) *Error {
	return &Error{KindNotFound, 3, resource + " not found"}
}

// Forbidden reports an actor lacking the role or ownership the
// attempted action requires.
func Forbidden(message string) *Error {
	return &Error{KindForbidden, 22, message}
}

// ActionNotPermitted reports a mutation the target's current state
// forbids regardless of who asks, e.g. editing an approved task.
func ActionNotPermitted(action string) *Error {
	return &Error{KindNotPermitted, 12, action + " is not permitted"}
}

func BadRequest(message string) *Error {
	return &Error{KindBadRequest, 23, message}
}

func InvalidValue(field string) *Error {
	return &Error{KindBadRequest, 20, "Invalid value provided for " + field}
}
