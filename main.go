package main

import "github.com/tabcheck/tabcheck/cmd"

func main() {
	cmd.Execute()
}
