package main

import "postcard-sync/cmd"

func main() {
	cmd.Execute()
}
