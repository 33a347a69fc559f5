// Package config handles configuration for the server component,
// including defaults, JSON overlay, and command-line flags.
package config

// Config holds runtime settings for the messaging server.
//
// Fields:
//   - EndpointAddr: bind address of the TCP messaging endpoint.
//   - WebEndpointAddr: bind address of the auxiliary read-only web view.
//   - StoreDir: directory holding the two JSON documents (users, posts).
type Config struct {
	EndpointAddr    string
	WebEndpointAddr string
	StoreDir        string
}

// LoadDefaults populates Config with development defaults: the well-known
// local messaging port plus the web view one port up.
func (c *Config) LoadDefaults() {
	c.EndpointAddr = "127.0.0.1:3001"
	c.WebEndpointAddr = "127.0.0.1:3002"
	c.StoreDir = "store"
}

// LoadConfig builds a Config by applying defaults, then overlaying values
// from an optional JSON file and finally from command-line flags.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
