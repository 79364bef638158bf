//go:build !windows

package server

import (
	"errors"
	"syscall"
)

// isAddrInUse reports whether a bind failed because the address is already
// held by another process.
func isAddrInUse(err error) bool {
	return errors.Is(err, syscall.EADDRINUSE)
}
