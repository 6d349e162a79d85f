package rooms

import "errors"

// Errors surfaced by room operations. The command layer matches on these to
// pick the reply; anything else is reported as an external or persistence
// failure.
var (
	ErrDuplicateActiveRoom = errors.New("creator already has an active room")
	ErrRoomNotFound        = errors.New("channel does not belong to a room")
	ErrNotAuthorized       = errors.New("only the room creator or an administrator may do this")
	ErrDetailsTooLong      = errors.New("room details exceed the allowed length")
	ErrExternalAPI         = errors.New("platform api request failed")
	ErrPersistence         = errors.New("persistence failure")
)
