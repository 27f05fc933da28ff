package main

import (
	"os"

	"feedview/internal/logger"
)

var log = logger.Named("cli")

func main() {
	logger.Configure()

	flags := &rootFlags{}
	err := newRootCmd(flags).Execute()
	if flags.logFile != nil {
		flags.logFile.Close()
	}
	if err != nil {
		log.Errorf("feedview: %v", err)
		os.Exit(1)
	}
}
