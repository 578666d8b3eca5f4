package main

import "github.com/example/sgw-sniper/cmd"

func main() {
	cmd.Execute()
}
