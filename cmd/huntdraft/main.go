package main

import (
	"os"

	"github.com/ILikeEggsToo/HuntingTourneyBot/internal/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
