package main

import "github.com/drawkit/draw-session/cmd"

func main() {
	cmd.Execute()
}
