package model

import (
	"context"
	"net"
)

//
// Networking
//

// Dialer establishes network connections. The stdlib's net.Dialer
// implements this interface, and internal/mocks provides a mockable
// implementation for testing.
type Dialer interface {
	// DialContext behaves like net.Dialer.DialContext.
	DialContext(ctx context.Context, network, address string) (net.Conn, error)
}
