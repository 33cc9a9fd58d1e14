package protocol

const (
	// Protocol/transport validation.
	ErrProtoBadRequest = "E_PROTO_BAD_REQUEST"
	ErrProtoVersion    = "E_PROTO_VERSION"
	ErrTimeout         = "E_TIMEOUT"

	// Table routing.
	ErrGameFull    = "E_GAME_FULL"
	ErrGameStarted = "E_GAME_STARTED"

	// Rule layer.
	ErrIllegalAction  = "E_ILLEGAL_ACTION"
	ErrIllegalFeeding = "E_ILLEGAL_FEEDING"
	ErrDisqualified   = "E_DISQUALIFIED"
	ErrInternal       = "E_INTERNAL"
)

var knownCodes = map[string]struct{}{
	ErrProtoBadRequest: {},
	ErrProtoVersion:    {},
	ErrTimeout:         {},
	ErrGameFull:        {},
	ErrGameStarted:     {},
	ErrIllegalAction:   {},
	ErrIllegalFeeding:  {},
	ErrDisqualified:    {},
	ErrInternal:        {},
}

func IsKnownCode(code string) bool {
	if code == "" {
		return true
	}
	_, ok := knownCodes[code]
	return ok
}
