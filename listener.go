package notify

import (
	"fmt"
	"net"

	proxyproto "github.com/pires/go-proxyproto"
)

// Listen binds a TCP listener on conf.Addr.
// If conf.ProxyProtocol is set, the listener reads PROXY protocol headers so
// that accepted connections report the original client address.
func Listen(conf *Config) (net.Listener, error) {
	if conf == nil {
		conf = DefaultConfig()
	}
	addr := conf.Addr
	if addr == "" {
		addr = DefaultAddr
	}

	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("%w on %s: %v", ErrBind, addr, err)
	}
	if conf.ProxyProtocol {
		return &proxyproto.Listener{
			Listener:          lis,
			ReadHeaderTimeout: DefaultProxyHeaderTimeout,
		}, nil
	}
	return lis, nil
}
