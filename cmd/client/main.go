package main

import (
	"distsocial/internal/client/cli"
	"distsocial/internal/client/config"
)

func main() {

	cfg := config.LoadConfig()
	app := cli.NewApp(cfg)
	app.Run()

}
