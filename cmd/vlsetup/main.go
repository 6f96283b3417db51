package main

import "github.com/videolingo/vlsetup/internal/cli"

func main() {
	cli.Execute()
}
