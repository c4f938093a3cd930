package core

import "errors"

// Sentinel errors surfaced synchronously to callers. The core never
// panics on user-driven input; every fallible entry point documents
// which of these it can return.
var (
	ErrSnapshotTooShort       = errors.New("core: snapshot buffer shorter than header")
	ErrBadMagic               = errors.New("core: snapshot magic mismatch")
	ErrVersionMismatch        = errors.New("core: snapshot version unsupported")
	ErrComponentCountMismatch = errors.New("core: snapshot component count mismatch")
	ErrChecksumMismatch       = errors.New("core: snapshot checksum mismatch")
	ErrROMMismatch            = errors.New("core: snapshot was captured against a different ROM set")
	ErrInvalidRegion          = errors.New("core: unknown region/model")
	ErrInvalidSIDRevision     = errors.New("core: unknown SID chip revision")
	ErrUnknownCartridgeFormat = errors.New("core: unrecognized cartridge image format")
	ErrNoCartridge            = errors.New("core: no cartridge attached")
)
