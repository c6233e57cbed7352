package main

import "github.com/morler/commitgpt/cmd"

func main() {
	cmd.Execute()
}
