package main

import "github.com/vuuvv/vrecord/cmd/vrecord/cmd"

func main() {
	cmd.Execute()
}
