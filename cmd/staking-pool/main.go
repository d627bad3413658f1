package main

import (
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/stakepool-labs/staking-pool/cmd/staking-pool/cli"
)

func init() {
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("failed to load .env file")
	}
}

func main() {
	// setup cli commands and flags
	if err := cli.Setup(); err != nil {
		panic(err)
	}
}
