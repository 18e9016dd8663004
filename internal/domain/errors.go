package domain

import "errors"

var (
	ErrInvalidInput   = errors.New("invalid input")
	ErrRoomNotFound   = errors.New("room not found")
	ErrItemNotFound   = errors.New("item not found")
	ErrRoomExists     = errors.New("room already exists")
	ErrRoomStarted    = errors.New("room has already started")
	ErrRoomNotStarted = errors.New("room has not started")
	ErrRoomFull       = errors.New("room is full")
	ErrMaxQuestions   = errors.New("maximum number of questions reached")
	ErrUnauthorized   = errors.New("admin privileges required")
	ErrNotParticipant = errors.New("not a room participant")
	ErrInvalidToken   = errors.New("invalid or expired token")
	ErrStore          = errors.New("store failure")
)

// Kind is the wire-level error taxonomy. Gateways and HTTP handlers map a
// domain error to exactly one kind; clients never see raw error strings from
// lower layers.
type Kind string

const (
	KindValidation     Kind = "validation"
	KindNotFound       Kind = "not_found"
	KindConflict       Kind = "conflict"
	KindUnauthorized   Kind = "unauthorized"
	KindInfrastructure Kind = "infrastructure"
)

func KindOf(err error) Kind {
	switch {
	case errors.Is(err, ErrInvalidInput):
		return KindValidation
	case errors.Is(err, ErrRoomNotFound), errors.Is(err, ErrItemNotFound):
		return KindNotFound
	case errors.Is(err, ErrRoomStarted),
		errors.Is(err, ErrRoomNotStarted),
		errors.Is(err, ErrRoomFull),
		errors.Is(err, ErrMaxQuestions),
		errors.Is(err, ErrRoomExists):
		return KindConflict
	case errors.Is(err, ErrUnauthorized),
		errors.Is(err, ErrNotParticipant),
		errors.Is(err, ErrInvalidToken):
		return KindUnauthorized
	default:
		return KindInfrastructure
	}
}
