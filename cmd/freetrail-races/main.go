package main

import "github.com/pfrederiksen/freetrail-races/internal/cli"

func main() {
	cli.Execute()
}
