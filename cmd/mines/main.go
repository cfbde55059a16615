package main

import "github.com/gamecenter/minesweeper/internal/cli"

func main() {
	cli.Execute()
}
