package core

import (
	"errors"
)

var (
	ErrAssetNotFound      = errors.New("asset not found")
	ErrNoLoader           = errors.New("no loader registered for resource type")
	ErrMissingField       = errors.New("required field is missing")
	ErrJointCountMismatch = errors.New("animated joint count does not match skeleton")
	ErrJointNotFound      = errors.New("joint not found in skeleton")
	ErrMalformedTrack     = errors.New("malformed keyframe track")
	ErrTooManyJoints      = errors.New("too many joints")
	ErrInvalidHandle      = errors.New("invalid or stale handle")
	ErrCapacityExceeded   = errors.New("capacity exceeded")
	ErrUnknown            = errors.New("unknown")
)
