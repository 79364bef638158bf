//go:build windows

package server

import (
	"errors"
	"syscall"
)

// isAddrInUse reports whether a bind failed because the address is already
// held by another process. Winsock surfaces contention as WSAEADDRINUSE,
// not the POSIX errno.
func isAddrInUse(err error) bool {
	return errors.Is(err, syscall.WSAEADDRINUSE) || errors.Is(err, syscall.EADDRINUSE)
}
