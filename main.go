package main

import "github.com/theirongolddev/goalfinch/cmd"

func main() {
	cmd.Execute()
}
