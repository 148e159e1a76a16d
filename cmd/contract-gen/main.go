package main

import (
	"log"
	"os"

	"github.com/blimu-dev/contract-gen/internal/cli"
	"github.com/blimu-dev/contract-gen/pkg/config"
)

func main() {
	if err := cli.Execute(config.SettingsFromEnv(os.LookupEnv)); err != nil {
		log.Println(err)
		os.Exit(1)
	}
}
