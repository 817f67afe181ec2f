package main

import "github.com/quicksilver-zone/qs-stake/internal/ui"

func main() {
	// Initialize terminal before any charmbracelet code runs so background
	// color queries do not leak into the output stream.
	ui.InitTerminal()

	Execute()
}
