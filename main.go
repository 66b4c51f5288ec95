// Package main is the entry point of the queuewait CLI.
package main

import (
	"github.com/huangsam/queuewait/cmd"
	"github.com/huangsam/queuewait/internal/contract"
	"github.com/huangsam/queuewait/internal/iocache"
)

func main() {
	cmd.SetCacheManager(iocache.Manager)
	defer iocache.CloseStores()

	err := cmd.Execute()
	if perr := cmd.StopProfiling(); perr != nil {
		contract.LogWarn("Failed to stop profiling", perr)
	}
	if err != nil {
		iocache.CloseStores()
		contract.LogFatal("Command failed", err)
	}
}
