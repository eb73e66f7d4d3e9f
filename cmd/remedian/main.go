package main

import "github.com/Balaji2106/demo-autoremediation/internal/cli"

func main() {
	cli.Execute()
}
