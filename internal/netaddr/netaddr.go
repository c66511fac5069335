// Package netaddr resolves human-readable IP strings into family-tagged
// network addresses. Only IPv4 and IPv6 literals are supported; there is no
// name resolution.
package netaddr

import (
	"errors"
	"fmt"
	"net/netip"
)

// ErrInvalidAddress indicates a string that is neither an IPv4 nor an IPv6
// address literal.
var ErrInvalidAddress = errors.New("not an IPv4 or IPv6 address")

// Family identifies the address family of a resolved address.
type Family int

const (
	IPv4 Family = iota
	IPv6
)

// String returns the string representation of Family.
func (f Family) String() string {
	switch f {
	case IPv4:
		return "IPv4"
	case IPv6:
		return "IPv6"
	default:
		return "UNKNOWN"
	}
}

// Addr is an immutable network address tagged with exactly one family.
// The zero value is not a valid address; use Resolve.
type Addr struct {
	family Family
	ip     netip.Addr
}

// Resolve converts an address string into an Addr. IPv4 form is tried first,
// then IPv6; anything else fails with ErrInvalidAddress. Mapped forms such as
// "::ffff:192.0.2.1" resolve as IPv6, matching inet_pton semantics.
func Resolve(s string) (Addr, error) {
	ip, err := netip.ParseAddr(s)
	if err != nil || ip.Zone() != "" {
		return Addr{}, fmt.Errorf("%q is %w", s, ErrInvalidAddress)
	}
	if ip.Is4() {
		return Addr{family: IPv4, ip: ip}, nil
	}
	return Addr{family: IPv6, ip: ip}, nil
}

// Family returns the address family tag.
func (a Addr) Family() Family {
	return a.family
}

// String returns the canonical textual form of the address.
func (a Addr) String() string {
	return a.ip.String()
}

// As4 returns the 4-byte binary representation. Only valid for IPv4 addresses.
func (a Addr) As4() [4]byte {
	return a.ip.As4()
}

// As16 returns the 16-byte binary representation. Only valid for IPv6 addresses.
func (a Addr) As16() [16]byte {
	return a.ip.As16()
}

// AddrPort attaches a port to the address.
func (a Addr) AddrPort(port uint16) netip.AddrPort {
	return netip.AddrPortFrom(a.ip, port)
}
