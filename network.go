package pgcopy

import (
	"fmt"
	"io"
	"net"
	"net/netip"
)

// MacAddr encodes a 6-byte hardware address.
func MacAddr(hw net.HardwareAddr) (*Fixed[[6]byte], error) {
	if len(hw) != 6 {
		return nil, fmt.Errorf("%w: macaddr needs 6 bytes, got %d", ErrInvalidMacAddr, len(hw))
	}
	return &Fixed[[6]byte]{[6]byte(hw)}, nil
}

// MacAddr8 encodes an EUI-64 address. A 6-byte address is expanded by
// inserting FF FE between its third and fourth bytes.
func MacAddr8(hw net.HardwareAddr) (*Fixed[[8]byte], error) {
	var out [8]byte
	switch len(hw) {
	case 6:
		copy(out[:3], hw[:3])
		out[3], out[4] = 0xFF, 0xFE
		copy(out[5:], hw[3:])
	case 8:
		out = [8]byte(hw)
	default:
		return nil, fmt.Errorf("%w: macaddr8 needs 6 or 8 bytes, got %d", ErrInvalidMacAddr, len(hw))
	}
	return &Fixed[[8]byte]{out}, nil
}

// Address family bytes of the inet/cidr payload.
const (
	pgAFInet  byte = 2
	pgAFInet6 byte = 3
)

// NetAddr is an inet or cidr column value.
type NetAddr struct {
	Prefix netip.Prefix
	CIDR   bool
}

// Inet encodes a host address with an optional netmask.
func Inet(p netip.Prefix) (NetAddr, error) {
	if !p.IsValid() {
		return NetAddr{}, fmt.Errorf("%w: %v", ErrInvalidNetAddr, p)
	}
	return NetAddr{Prefix: p}, nil
}

// Cidr encodes a network. Bits to the right of the mask must be zero.
func Cidr(p netip.Prefix) (NetAddr, error) {
	if !p.IsValid() {
		return NetAddr{}, fmt.Errorf("%w: %v", ErrInvalidNetAddr, p)
	}
	if p.Masked() != p {
		return NetAddr{}, fmt.Errorf("%w: %v has bits set right of mask", ErrInvalidNetAddr, p)
	}
	return NetAddr{Prefix: p, CIDR: true}, nil
}

// Size is family, bits, is_cidr and length bytes followed by the address.
func (a NetAddr) Size() int { return 4 + a.Prefix.Addr().BitLen()/8 }

func (a NetAddr) WriteTo(w io.Writer) (int64, error) {
	addr := a.Prefix.Addr()
	buf := make([]byte, 0, a.Size())
	if addr.Is4() {
		buf = append(buf, pgAFInet)
	} else {
		buf = append(buf, pgAFInet6)
	}
	var isCIDR byte
	if a.CIDR {
		isCIDR = 1
	}
	buf = append(buf, byte(a.Prefix.Bits()), isCIDR, byte(addr.BitLen()/8))
	buf = append(buf, addr.AsSlice()...)
	n, err := w.Write(buf)
	return int64(n), err
}
