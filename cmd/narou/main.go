package main

import (
	"narou-client/cmd/narou/commands"
	"narou-client/pkg/serviceutil"
)

func main() {
	commands.ExecuteContext(serviceutil.SignalContext())
}
