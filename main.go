package main

import "github.com/caretrack/caretrack_backend/cmd"

func main() {
	cmd.Execute()
}
