package main

import "github.com/bearduk/beard-events/internal/cli"

func main() {
	cli.Execute()
}
