package state

import "github.com/ingvar1995/toxcore/internal/logger"

// ErrVersionOverflow is returned instead of silently wrapping a
// 32-bit version counter back to zero.
var ErrVersionOverflow = logger.New(logger.CodeMalformed, "state: version counter overflow")

// nextVersion increments a version counter, returning ErrVersionOverflow
// instead of wrapping at the uint32 boundary.
func nextVersion(v uint32) (uint32, error) {
	if v == ^uint32(0) {
		return 0, ErrVersionOverflow
	}
	return v + 1, nil
}
