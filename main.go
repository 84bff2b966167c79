package main

import "github.com/printmetrics/resotune/cmd"

func main() {
	cmd.Execute()
}
