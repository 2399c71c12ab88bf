package main

import (
	"fmt"
	"os"
)

// Exit codes
const (
	ExitSuccess      = 0
	ExitGeneralError = 1
	ExitInvalidArgs  = 2
	ExitBadResponse  = 3
	ExitConnection   = 4
	ExitStorageError = 5
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	if len(args) == 0 {
		printUsage()
		return ExitInvalidArgs
	}

	command := args[0]
	cmdArgs := args[1:]

	switch command {
	case "get":
		return runGet(cmdArgs)
	case "download":
		return runDownload(cmdArgs)
	case "help", "-h", "--help":
		printUsage()
		return ExitSuccess
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		return ExitInvalidArgs
	}
}

func printUsage() {
	fmt.Fprintln(os.Stderr, `Usage: fetch <command> [options]

Commands:
  get       Perform a single HTTP request and print the response body
  download  Retrieve a resource in bounded windows to a file or object storage

Run 'fetch <command> -h' for command-specific help.`)
}
