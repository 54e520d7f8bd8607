package main

import "github.com/audiolibrelab/aircheck/cmd"

func main() {
	cmd.Execute()
}
