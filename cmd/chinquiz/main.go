package main

import "github.com/mcoot/chinquiz/internal/cli"

func main() {
	cli.Execute()
}
