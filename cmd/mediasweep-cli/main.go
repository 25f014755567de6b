package main

import "mediasweep/cmd/mediasweep-cli/cmd"

func main() {
	cmd.Execute()
}
