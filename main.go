package main

import "github.com/fwtools/fgt-export/cmd"

func main() {
	cmd.Execute()
}
