package config

import (
	"flag"
	"os"

	"distsocial/internal/flagx"
)

// parseFlags populates selected server Config fields from command-line flags.
//
// Supported flags:
//
//	-a string   messaging bind address (e.g., "127.0.0.1:3001")
//	-w string   web view bind address (e.g., "127.0.0.1:3002")
//	-s string   store directory
//
// Only the flags handled here are parsed; flagx.FilterArgs screens out
// everything else so other components can own their own flags.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-w", "-s"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddr, "a", config.EndpointAddr, "address and port of the messaging endpoint")
	fs.StringVar(&config.WebEndpointAddr, "w", config.WebEndpointAddr, "address and port of the read-only web view")
	fs.StringVar(&config.StoreDir, "s", config.StoreDir, "store directory")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}
}
