package main

import (
	"discofm/cmd"
)

func main() {
	cmd.Execute()
}
