package main

import "ragserve/internal/cli"

func main() {
	cli.Execute()
}
