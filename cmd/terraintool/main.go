// terraintool is a CLI utility for inspecting and converting terrain saves.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/Faultbox/mountainhome/internal/logger"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	var err error
	switch command {
	case "info":
		err = cmdInfo(args)
	case "surface":
		err = cmdSurface(args)
	case "ranges":
		err = cmdRanges(args)
	case "mesh":
		err = cmdMesh(args)
	case "convert":
		err = cmdConvert(args)
	case "fetch":
		err = cmdFetch(args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}

	logger.Sync()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`terraintool - terrain save utility

Usage:
  terraintool <command> [options] <args>

Commands:
  info [-backend b] <save>                     Show grid dimensions and tree statistics
  surface [-backend b] <save> <x> <y>          Print the surface level of a column
  ranges [-backend b] <save> <x> <y>           Print empty and filled z-ranges of a column
  mesh [-backend b] [-reduce] [-chunk-size n] <save>
                                               Build chunk meshes and print statistics
  convert -from b -to b <in> <out>            Convert between octree and matrix saves
  fetch [source] [dir]                         Download a save (http, s3, git, ...)
                                               Defaults come from data.fetch_source and data.fetch_dir

Every command accepts -log-level (debug, info, warn, error).

Examples:
  terraintool info worlds/fortress.terrain
  terraintool mesh -reduce -chunk-size 32 worlds/fortress.terrain
  terraintool convert -from octree -to matrix fortress.terrain fortress.dense
  terraintool fetch https://example.com/worlds/fortress.terrain worlds`)
}

// commandFlags builds the flag set shared by every command.
func commandFlags(name string) (*flag.FlagSet, *string) {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	level := fs.String("log-level", "warn", "Log level")
	return fs, level
}

func initLogging(level string) error {
	if err := logger.Init(level, ""); err != nil {
		return fmt.Errorf("init logging: %w", err)
	}
	return nil
}
