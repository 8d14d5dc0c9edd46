package main

import "github.com/tanq16/speedprobe/cmd"

func main() {
	cmd.Execute()
}
