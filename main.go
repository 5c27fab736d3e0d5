package main

import "github.com/PhilHem/netlog/backend/cli"

func main() {
	cli.Execute()
}
