package probe

import (
	"errors"
	"net"
	"syscall"
)

// netErrorCode walks the error tree of a failed dial and names the network
// failure the way the original errno/resolver would: ECONNREFUSED for a
// refused connection, NXDOMAIN-style codes for DNS. Empty string means the
// error is not a recognized network-level failure.
func netErrorCode(err error) string {
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		if dnsErr.IsNotFound {
			return "ENOTFOUND"
		}
		if dnsErr.IsTimeout || dnsErr.IsTemporary {
			return "EAI_AGAIN"
		}
		return "DNS: " + dnsErr.Err
	}

	var errno syscall.Errno
	if errors.As(err, &errno) {
		switch errno {
		case syscall.ECONNREFUSED:
			return "ECONNREFUSED"
		case syscall.ECONNRESET:
			return "ECONNRESET"
		case syscall.EHOSTUNREACH:
			return "EHOSTUNREACH"
		case syscall.ENETUNREACH:
			return "ENETUNREACH"
		}
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) && opErr.Op == "dial" {
		return "ECONNREFUSED"
	}
	return ""
}

func isTimeout(err error) bool {
	var nerr net.Error
	return errors.As(err, &nerr) && nerr.Timeout()
}
