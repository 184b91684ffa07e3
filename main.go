package main

import "github.com/KaramelBytes/pandacode-cli/cmd"

func main() {
	cmd.Execute()
}
