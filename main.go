package main

import "layer-backend/cmd"

func main() {
	cmd.Run()
}
