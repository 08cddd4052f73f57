package main

import "deskpet/internal/cli"

func main() {
	cli.Execute()
}
