package main

import "taskbook/internal/cli"

func main() {
	cli.Main()
}
