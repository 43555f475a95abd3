package main

import "github.com/assertlab/actl/cmd"

func main() {
	cmd.Execute()
}
