package main

import "github.com/fakeyudi/lineprof/cmd"

func main() {
	cmd.Execute()
}
