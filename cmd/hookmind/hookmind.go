package main

import (
	"math/rand"
	"os"
	"time"

	"github.com/kiosk404/hookmind/internal/hookmind/cmd"
	_ "go.uber.org/automaxprocs"
)

func main() {
	rand.New(rand.NewSource(time.Now().UnixNano()))

	command := cmd.NewDefaultHookmindCommand()
	if err := command.Execute(); err != nil {
		os.Exit(1)
	}
}
