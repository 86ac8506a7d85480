package sdkloader

import "errors"

var (
	// ErrUnsupported is returned for a name no factory is registered for.
	ErrUnsupported = errors.New("sdkloader: no rules defined to initialize SDK")

	// ErrInvalidRegistration is returned for an empty name or nil factory.
	ErrInvalidRegistration = errors.New("sdkloader: invalid registration")

	// ErrAlreadyRegistered is returned when a name is registered twice.
	ErrAlreadyRegistered = errors.New("sdkloader: already registered")
)
