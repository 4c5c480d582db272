package main

import "github.com/theirongolddev/dayline/cmd"

func main() {
	cmd.Execute()
}
