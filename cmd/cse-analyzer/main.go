package main

import (
	"os"
)

func main() {
	if err := newRootCmd(&App{}).Execute(); err != nil {
		os.Exit(1)
	}
}
