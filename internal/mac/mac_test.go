package mac

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize_Valid(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"already canonical", "aa:bb:cc:dd:ee:01", "aa:bb:cc:dd:ee:01"},
		{"uppercase folded", "AA:BB:CC:DD:EE:01", "aa:bb:cc:dd:ee:01"},
		{"mixed case", "Aa:bB:Cc:dD:Ee:F0", "aa:bb:cc:dd:ee:f0"},
		{"surrounding whitespace", "  aa:bb:cc:dd:ee:02\n", "aa:bb:cc:dd:ee:02"},
		{"all zeros", "00:00:00:00:00:00", "00:00:00:00:00:00"},
		{"broadcast", "FF:FF:FF:FF:FF:FF", "ff:ff:ff:ff:ff:ff"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			addr, err := Normalize(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, addr.String())
			assert.False(t, addr.IsZero())
		})
	}
}

func TestNormalize_Malformed(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"empty", ""},
		{"whitespace only", "   "},
		{"non-hex octet", "zz:bb:cc:dd:ee:01"},
		{"five octets", "aa:bb:cc:dd:ee"},
		{"seven octets", "aa:bb:cc:dd:ee:01:02"},
		{"dash separators", "aa-bb-cc-dd-ee-01"},
		{"dot separators", "aabb.ccdd.ee01"},
		{"missing separators", "aabbccddee01"},
		{"short octet", "a:bb:cc:dd:ee:01"},
		{"long octet", "aaa:bb:cc:dd:ee:1"},
		{"trailing garbage", "aa:bb:cc:dd:ee:01 x"},
		{"embedded space", "aa:bb :cc:dd:ee:01"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			addr, err := Normalize(tt.in)
			require.Error(t, err)
			assert.True(t, addr.IsZero())

			var malformed *MalformedAddressError
			require.True(t, errors.As(err, &malformed))
			assert.Equal(t, tt.in, malformed.Raw)
		})
	}
}

func TestAddr_EqualityByValue(t *testing.T) {
	a := MustNormalize("AA:BB:CC:DD:EE:01")
	b := MustNormalize("aa:bb:cc:dd:ee:01")

	// Addr is a value type usable as a map key; case variants collapse.
	assert.Equal(t, a, b)
	seen := map[Addr]bool{a: true}
	assert.True(t, seen[b])
}

func TestAddr_Bytes(t *testing.T) {
	addr := MustNormalize("aa:bb:cc:dd:ee:f0")
	assert.Equal(t, []byte{0xaa, 0xbb, 0xcc, 0xdd, 0xee, 0xf0}, addr.Bytes())
}

func TestFromBytes_RoundTrip(t *testing.T) {
	addr := MustNormalize("02:00:5e:10:00:01")

	back, err := FromBytes(addr.Bytes())
	require.NoError(t, err)
	assert.Equal(t, addr, back)
}

func TestFromBytes_WrongLength(t *testing.T) {
	_, err := FromBytes([]byte{1, 2, 3})
	assert.Error(t, err)
}

func TestMalformedAddressError_Message(t *testing.T) {
	err := &MalformedAddressError{Raw: "zz:invalid", Index: 2}
	assert.Contains(t, err.Error(), "zz:invalid")
	assert.Contains(t, err.Error(), "index 2")
}
