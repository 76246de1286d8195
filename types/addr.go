package types

import (
	"errors"
	"strconv"
	"strings"
)

// MAC is a 6-byte wireless station address.
type MAC [6]byte

// Broadcast is the well-known broadcast destination.
var Broadcast = MAC{0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF}

func (m MAC) IsBroadcast() bool { return m == Broadcast }
func (m MAC) IsZero() bool      { return m == MAC{} }

const hexDigits = "0123456789abcdef"

func (m MAC) String() string {
	var b [17]byte
	for i, v := range m {
		if i > 0 {
			b[i*3-1] = ':'
		}
		b[i*3] = hexDigits[v>>4]
		b[i*3+1] = hexDigits[v&0x0F]
	}
	return string(b[:])
}

var errBadMAC = errors.New("invalid mac address")

// ParseMAC accepts "aa:bb:cc:dd:ee:ff" (or '-' separators).
func ParseMAC(s string) (MAC, error) {
	var m MAC
	parts := strings.FieldsFunc(s, func(r rune) bool { return r == ':' || r == '-' })
	if len(parts) != len(m) {
		return m, errBadMAC
	}
	for i, p := range parts {
		v, err := strconv.ParseUint(p, 16, 8)
		if err != nil {
			return m, errBadMAC
		}
		m[i] = byte(v)
	}
	return m, nil
}

// UnmarshalYAML lets configs carry addresses as strings.
func (m *MAC) UnmarshalYAML(unmarshal func(any) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	v, err := ParseMAC(s)
	if err != nil {
		return err
	}
	*m = v
	return nil
}

func (m MAC) MarshalYAML() (any, error) { return m.String(), nil }
