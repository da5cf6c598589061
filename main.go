package main

import "github.com/lodisdb/lodis/cmd"

func main() {
	cmd.Execute()
}
