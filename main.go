package main

import (
	"log"

	"github.com/D-Marc1/Simple-MySQLi/cmd/cli"
	"github.com/D-Marc1/Simple-MySQLi/internal/config"
	"github.com/D-Marc1/Simple-MySQLi/internal/logger"
)

func main() {
	cfg, err := config.Load("./config/config.toml")
	if err != nil {
		log.Fatal(err)
	}

	if err := logger.Setup(cfg.Logging); err != nil {
		log.Fatal(err)
	}

	cli.Run(cfg)
}
