package quota

import "errors"

var (
	ErrInvalidKey  = errors.New("quota: empty identity key")
	ErrStore       = errors.New("quota: counter store failed")
	ErrNilStore    = errors.New("quota: nil store")
	ErrBadResponse = errors.New("quota: unexpected store response")

	ErrCounterVanished = errors.New("quota: counter row deleted during take")
)
