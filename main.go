package main

import "github.com/user-none/goc64/cmd"

func main() {
	cmd.Execute()
}
