package main

import "github.com/tranvictor/walletkit/cmd"

func main() {
	cmd.Execute()
}
