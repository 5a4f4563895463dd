package config

import "errors"

var (
	ErrUnknownAttack = errors.New("unknown attack")
	ErrUnknownEnemy  = errors.New("unknown enemy type")
	ErrPhaseIndex    = errors.New("phase index out of range")
	ErrInvalid       = errors.New("invalid config")
)
