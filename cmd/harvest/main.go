package main

import (
	"gaiaharvest/cmd/harvest/commands"
	"gaiaharvest/pkg/serviceutil"
)

func main() {
	commands.ExecuteContext(serviceutil.SignalContext())
}
