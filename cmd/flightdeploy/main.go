package main

import (
	"github.com/flightdesk/flightdeploy/pkg/cli"
)

func main() {
	cli.Execute()
}
