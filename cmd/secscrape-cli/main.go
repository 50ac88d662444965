package main

import (
	"secscrape-backend/cmd/secscrape-cli/commands"
	"secscrape-backend/lib/util/serviceutil"
)

func main() {
	commands.ExecuteContext(serviceutil.SignalContext())
}
