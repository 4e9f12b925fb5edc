package main

import (
	"dealroom/internal/cli"
)

func main() {
	cli.Execute()
}
