package netaddr_test

import (
	"bytes"
	"errors"
	"net"
	"testing"

	"github.com/omochice/peerchat/internal/netaddr"
)

func TestResolve_IPv4(t *testing.T) {
	tests := []string{
		"127.0.0.1",
		"0.0.0.0",
		"192.168.0.1",
		"255.255.255.255",
	}

	for _, s := range tests {
		t.Run(s, func(t *testing.T) {
			addr, err := netaddr.Resolve(s)
			if err != nil {
				t.Fatalf("Resolve(%q) error = %v", s, err)
			}
			if addr.Family() != netaddr.IPv4 {
				t.Errorf("Family() = %v, want IPv4", addr.Family())
			}

			want := net.ParseIP(s).To4()
			got := addr.As4()
			if !bytes.Equal(got[:], want) {
				t.Errorf("As4() = %v, want %v", got, want)
			}
		})
	}
}

func TestResolve_IPv6(t *testing.T) {
	tests := []string{
		"::1",
		"2001:db8::1",
		"fe80::dead:beef",
		"::ffff:192.0.2.1",
	}

	for _, s := range tests {
		t.Run(s, func(t *testing.T) {
			addr, err := netaddr.Resolve(s)
			if err != nil {
				t.Fatalf("Resolve(%q) error = %v", s, err)
			}
			if addr.Family() != netaddr.IPv6 {
				t.Errorf("Family() = %v, want IPv6", addr.Family())
			}

			want := net.ParseIP(s).To16()
			got := addr.As16()
			if !bytes.Equal(got[:], want) {
				t.Errorf("As16() = %v, want %v", got, want)
			}
		})
	}
}

func TestResolve_Invalid(t *testing.T) {
	tests := []string{
		"999.999.999.999",
		"192.168.0",
		"localhost",
		"fe80::1%eth0",
		"",
	}

	for _, s := range tests {
		t.Run(s, func(t *testing.T) {
			_, err := netaddr.Resolve(s)
			if !errors.Is(err, netaddr.ErrInvalidAddress) {
				t.Errorf("Resolve(%q) error = %v, want ErrInvalidAddress", s, err)
			}
		})
	}
}

func TestAddrPort(t *testing.T) {
	addr, err := netaddr.Resolve("127.0.0.1")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}

	ap := addr.AddrPort(9000)
	if got := ap.String(); got != "127.0.0.1:9000" {
		t.Errorf("AddrPort(9000) = %q, want %q", got, "127.0.0.1:9000")
	}
}
