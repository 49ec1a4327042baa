package main

import "github.com/kebairia/repobak/cmd"

func main() {
	cmd.Execute()
}
