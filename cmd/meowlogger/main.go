package main

import "github.com/KHET-1/meowlogger/internal/cmd"

func main() {
	cmd.Execute()
}
