// Command admin drives the trivia programs from a terminal: bootstrapping the program
// states, scheduling tournaments, importing score sheets and minting test balances.
package main

import (
	"log"
	"os"

	"github.com/urfave/cli/v2"
)

func main() {
	cliApp := &cli.App{
		Name:  "admin",
		Usage: "operate the trivia programs",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "config",
				Value: "config.yaml",
				Usage: "path to the configuration file",
			},
			&cli.StringFlag{
				Name:    "seed",
				EnvVars: []string{"TRIVIA_ADMIN_SEED"},
				Usage:   "nkeys user seed of the signing account",
			},
		},
		Commands: []*cli.Command{
			initCommand(),
			tournamentCommand(),
			mintCommand(),
		},
	}

	if err := cliApp.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
