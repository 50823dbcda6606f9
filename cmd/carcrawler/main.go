package main

import (
	"context"

	"carcatalog/cmd/carcrawler/commands"
	"carcatalog/lib/serviceutil"
)

func main() {
	commands.ExecuteContext(serviceutil.SignalContext(context.Background()))
}
