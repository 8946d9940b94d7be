package main

import "github.com/animesync/animesync/cmd"

func main() {
	cmd.Execute()
}
