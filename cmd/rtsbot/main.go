package main

import "github.com/andrescamacho/rtsbot-go/internal/adapters/cli"

func main() {
	cli.Execute()
}
