package main

import "github.com/vietddude/ethscan/internal/cli"

func main() {
	cli.Execute()
}
