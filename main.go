package main

import "viewdeploy/cmd"

func main() {
	cmd.Execute()
}
