package main

import "github.com/mavmaso/ficherors/cmd"

func main() {
	cmd.Execute()
}
