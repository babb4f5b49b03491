package main

import "github.com/oshokin/usb-relay/cmd/relay/cmd"

func main() {
	cmd.Execute()
}
