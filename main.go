package main

import "github.com/yourusername/freelancedesk/cmd"

func main() {
	cmd.Execute()
}
