package rawsctp

import (
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveAddr_Loopback(t *testing.T) {
	a, err := ResolveAddr("127.0.0.1:9000")
	require.NoError(t, err)
	assert.Equal(t, 9000, a.Port)
	assert.True(t, a.IP.Equal(net.ParseIP("127.0.0.1")))
}

func TestResolveAddr_EmptyHost(t *testing.T) {
	a, err := ResolveAddr(":9000")
	require.NoError(t, err)
	assert.Equal(t, 9000, a.Port)
	assert.Nil(t, a.IP)
}

func TestResolveAddr_InvalidPort(t *testing.T) {
	_, err := ResolveAddr("127.0.0.1:notaport")
	assert.Error(t, err)
}

func TestResolveAddr_MissingColon(t *testing.T) {
	_, err := ResolveAddr("127.0.0.1")
	assert.Error(t, err)
}

func TestAddr_String(t *testing.T) {
	a := Addr{IP: net.ParseIP("10.0.0.1"), Port: 443}
	assert.Equal(t, "10.0.0.1:443", a.String())
}

func TestAddr_String_NoIP(t *testing.T) {
	a := Addr{Port: 80}
	assert.Equal(t, ":80", a.String())
}

func TestAddr_IsIPv6(t *testing.T) {
	v4 := Addr{IP: net.ParseIP("1.2.3.4")}
	v6 := Addr{IP: net.ParseIP("::1")}
	assert.False(t, v4.isIPv6())
	assert.True(t, v6.isIPv6())
}

func TestAddressFamily(t *testing.T) {
	assert.Equal(t, addressFamily("ip6") != addressFamily("ip4"), true)
}
