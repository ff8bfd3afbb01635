// bandit-cli inspects and drives the recommender from a shell, against the
// same stores the server uses.
package main

import (
	"os"

	"myArtMarket/app/bandit-cli/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
