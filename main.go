package main

import "github.com/yeremiapane/pastelaria-api/cli"

func main() {
	cli.Execute()
}
