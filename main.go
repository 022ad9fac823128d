package main

import "gsts/cmd"

func main() {
	cmd.Execute()
}
