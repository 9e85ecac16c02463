package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"fauxhost/pkg/engine"
)

func printRootHelp() {
	fmt.Println(`fauxhost - local HTTP test-double server

Usage:
  fauxhost <command> [options]

Available Commands:
  up        Start the fauxhost server
  down      Stop a running fauxhost server
  help      Show help for a command

Run 'fauxhost help <command>' for details on a specific command.`)
}

func printUpHelp() {
	fmt.Println(`Usage:
  fauxhost up [--config <path>]

Options:
  --config   Path to fauxhost config YAML file (default: ./fauxhost.config.yaml).
             A missing file is fine; built-in defaults are used.`)
}

func printDownHelp() {
	fmt.Println(`Usage:
  fauxhost down [--config <path>]

Options:
  --config   Path to fauxhost config YAML file (default: ./fauxhost.config.yaml)`)
}

func resolveConfigPath(raw string) string {
	absPath, err := filepath.Abs(raw)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Unable to resolve config path: %v\n", err)
		os.Exit(1)
	}
	return absPath
}

func main() {
	if len(os.Args) < 2 {
		printRootHelp()
		os.Exit(1)
	}

	switch os.Args[1] {

	case "up":
		runCmd := flag.NewFlagSet("up", flag.ExitOnError)
		configPath := runCmd.String("config", "fauxhost.config.yaml", "Path to configuration YAML file")

		if err := runCmd.Parse(os.Args[2:]); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to parse flags: %v\n", err)
			os.Exit(1)
		}

		serverEngine := engine.InstantiateEngine(resolveConfigPath(*configPath))
		serverEngine.Run()

	case "down":
		runCmd := flag.NewFlagSet("down", flag.ExitOnError)
		configPath := runCmd.String("config", "fauxhost.config.yaml", "Path to configuration YAML file")

		if err := runCmd.Parse(os.Args[2:]); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to parse flags: %v\n", err)
			os.Exit(1)
		}

		if err := engine.ShutdownRemote(resolveConfigPath(*configPath)); err != nil {
			fmt.Fprintf(os.Stderr, "Unable to stop the fauxhost server: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("Shut down fauxhost server")

	case "help":
		if len(os.Args) == 2 {
			printRootHelp()
		} else {
			switch os.Args[2] {
			case "up":
				printUpHelp()
			case "down":
				printDownHelp()
			default:
				fmt.Printf("Unknown help topic: %s\n", os.Args[2])
				printRootHelp()
				os.Exit(1)
			}
		}

	default:
		fmt.Printf("Unknown command: %s\n\n", os.Args[1])
		printRootHelp()
		os.Exit(1)
	}
}
