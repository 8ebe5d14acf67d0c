package errors

import (
	"errors"
	"net"
	"syscall"
)

// IsNetworkError checks if the error is a network-level error (connection issues, DNS, etc.)
// Uses syscall error codes for stable, universal detection.
//
// Detected errors include:
//   - Connection refused (ECONNREFUSED)
//   - Connection reset (ECONNRESET)
//   - Connection timed out (ETIMEDOUT)
//   - Network unreachable (ENETUNREACH)
//   - No route to host (EHOSTUNREACH)
//   - Connection aborted (ECONNABORTED)
//   - Broken pipe (EPIPE)
//   - Timeout errors (net.Error.Timeout())
func IsNetworkError(err error) bool {
	if err == nil {
		return false
	}

	var errno syscall.Errno
	if errors.As(err, &errno) {
		switch errno {
		case syscall.ECONNREFUSED,
			syscall.ECONNRESET,
			syscall.ETIMEDOUT,
			syscall.ENETUNREACH,
			syscall.EHOSTUNREACH,
			syscall.ECONNABORTED,
			syscall.EPIPE:
			return true
		}
	}

	// DNS failures
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return true
	}

	// net.OpError wraps network operation failures
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		// Recursively check the underlying error
		return IsNetworkError(opErr.Err)
	}

	// net.Error interface (includes custom network errors)
	var netErr net.Error
	if errors.As(err, &netErr) {
		return netErr.Timeout()
	}

	return false
}
