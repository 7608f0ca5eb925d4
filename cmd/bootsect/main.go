package main

import "bootsect/cmd/bootsect/cmd"

func main() {
	cmd.Execute()
}
