package config

import (
	"encoding/json"
	"os"

	"distsocial/internal/flagx"
)

// JsonConfig is the JSON file shape of the server configuration. It is an
// intermediate DTO; after unmarshalling, its fields are copied into the
// runtime Config.
type JsonConfig struct {
	EndpointAddr    string `json:"endpoint_addr"`
	WebEndpointAddr string `json:"web_endpoint_addr"`
	StoreDir        string `json:"store_dir"`
}

// parseJson loads configuration values from the JSON file named by the
// -c/-config flags, when present. Missing flag means nothing to load; an
// unreadable or invalid file panics, since running with half-applied
// configuration is worse than not starting.
func parseJson(config *Config) {

	jsonConfigFile := flagx.JsonConfigFlags()

	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	err = json.Unmarshal(file, c)
	if err != nil {
		panic(err)
	}

	config.EndpointAddr = c.EndpointAddr
	config.WebEndpointAddr = c.WebEndpointAddr
	config.StoreDir = c.StoreDir
}
