package main

import "github.com/promptkeep/promptkeep/internal/cli"

func main() {
	cli.Execute()
}
