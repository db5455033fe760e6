package main

import "github.com/lexhist/lexhist/cmd"

func main() {
	cmd.Execute()
}
