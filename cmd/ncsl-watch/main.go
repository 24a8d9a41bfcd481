package main

import "github.com/akum32o/ncsl-ai-energy-watch/internal/cli"

func main() {
	cli.Execute()
}
