package main

import "github.com/nextlevelbuilder/codeagent/cmd"

func main() {
	cmd.Execute()
}
