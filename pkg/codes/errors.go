package codes

import (
	"github.com/yola1107/kratos/v2/errors"
)

var (
	ErrFail              = errors.New(1, "", "Failed")
	ErrZoneNotFound      = errors.New(2, "", "queue zone not found")
	ErrZoneFull          = errors.New(3, "", "queue zone full")
	ErrAlreadyQueued     = errors.New(4, "", "player already queued")
	ErrAlreadyInSession  = errors.New(5, "", "player already in a session")
	ErrInsufficientToken = errors.New(6, "", "insufficient tokens")
	ErrSessionNotFound   = errors.New(7, "", "session not found")
	ErrSessionClosed     = errors.New(8, "", "session closed")
	ErrSessionFull       = errors.New(9, "", "session full")
	ErrLateJoinDisabled  = errors.New(10, "", "late join disabled")
	ErrTeamNotFound      = errors.New(11, "", "team not found")
	ErrPlayerNotFound    = errors.New(12, "", "player not found")
	ErrGameNotFound      = errors.New(13, "", "game type not found")
	ErrArenaBusy         = errors.New(14, "", "arena busy")
	ErrNotQueued         = errors.New(15, "", "player not queued")
	ErrBadField          = errors.New(16, "", "unknown admin field")
)
