package main

import "moviereview/internal/cli"

func main() {
	cli.Execute()
}
