package game

import "errors"

var (
	// ErrBadConfig marks a setup violation; the game cannot be constructed.
	ErrBadConfig = errors.New("bad game configuration")
	// ErrIllegalAction marks an Action4 that cannot be applied to its player.
	ErrIllegalAction = errors.New("illegal action")
	// ErrIllegalFeeding marks a FeedingChoice whose precondition does not hold.
	ErrIllegalFeeding = errors.New("illegal feeding choice")
)
