package main

import "github.com/strumapp/strum/cmd"

func main() {
	cmd.Execute()
}
