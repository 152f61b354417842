package main

import "github.com/upb/conference-portal/cmd/conference-portal/cmd"

func main() {
	cmd.Execute()
}
