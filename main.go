package main

import "github.com/airmote/airmote-go-client/cmd"

func main() {
	cmd.Execute()
}
