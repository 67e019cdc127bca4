package openregister

import (
	"crypto/tls"
	"crypto/x509"
	"errors"
	"net"
	"syscall"
)

// Sentinel errors for common register failures.
var (
	// ErrRecordNotFound indicates a register has no record with the requested id.
	ErrRecordNotFound = errors.New("record not found")

	// ErrFieldNotFound indicates a record has no field with the requested name.
	ErrFieldNotFound = errors.New("field not found")

	// ErrInvalidCurie indicates a curie value is not of the form "register:id".
	ErrInvalidCurie = errors.New("invalid curie")

	// ErrCurieCycle indicates a chain of curies leads back to itself.
	ErrCurieCycle = errors.New("curie cycle")

	// ErrResolveDepth indicates a chain of curies exceeded the configured depth.
	ErrResolveDepth = errors.New("curie chain too deep")
)

// IsConnectionError reports whether err stems from failing to reach a host:
// refused or reset connections, dial failures, DNS lookups and TLS
// certificate verification. HTTP status errors and malformed bodies are not
// connection errors.
func IsConnectionError(err error) bool {
	if err == nil {
		return false
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return true
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return true
	}

	var certErr *tls.CertificateVerificationError
	if errors.As(err, &certErr) {
		return true
	}

	var (
		unknownAuthority x509.UnknownAuthorityError
		hostname         x509.HostnameError
		invalid          x509.CertificateInvalidError
	)
	if errors.As(err, &unknownAuthority) || errors.As(err, &hostname) || errors.As(err, &invalid) {
		return true
	}

	return errors.Is(err, syscall.ECONNREFUSED) || errors.Is(err, syscall.ECONNRESET)
}
