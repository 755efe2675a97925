package main

import "github.com/kno2gether/screenshot-organizer/cmd/screenshot-organizer/cmd"

func main() {
	cmd.Execute()
}
