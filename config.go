package notify

import "time"

// Config configures a Server.
type Config struct {
	Addr  string // address to bind to
	Label string // prefix of printed event lines

	// ReadTimeout closes a connection that sends nothing for this long.
	// Zero disables the timeout.
	ReadTimeout time.Duration

	// DropPartial discards a final line that is not newline-terminated
	// when the peer closes the connection.
	DropPartial bool

	// ProxyProtocol expects a PROXY protocol header on every connection.
	ProxyProtocol bool
}

// DefaultConfig returns the default listener configuration.
func DefaultConfig() *Config {
	return &Config{
		Addr:  DefaultAddr,
		Label: DefaultLabel,
	}
}

func (c *Config) ensureDefaults() {
	if c.Addr == "" {
		c.Addr = DefaultAddr
	}
	if c.Label == "" {
		c.Label = DefaultLabel
	}
}
