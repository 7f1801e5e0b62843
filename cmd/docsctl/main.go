package main

import "github.com/dalemusser/docuhub/internal/app/cli"

func main() {
	cli.Execute()
}
