package tenantdb

import "errors"

var (
	// ErrRegistryClosed is returned when a pool is requested after CloseAll.
	ErrRegistryClosed = errors.New("pool registry is closed")

	// ErrEmptyDefaultDatabase is returned when a registry is constructed
	// without a primary database name to fall back to.
	ErrEmptyDefaultDatabase = errors.New("default database name is required")

	// ErrNilDialFunc is returned when a registry is constructed without a dialer.
	ErrNilDialFunc = errors.New("dial function is required")
)
