package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"tankduel/engine/tools/replay_inspect"
)

func main() {
	path := flag.String("path", "", "replay bundle directory or its manifest.json")
	root := flag.String("dir", "", "list every bundle under this directory instead")
	timeline := flag.Bool("timeline", false, "print the merged event and frame timeline")
	flag.Parse()

	var (
		payload interface{}
		err     error
	)
	switch {
	case *root != "":
		payload, err = replayinspect.Catalog(*root)
	case *path == "":
		fmt.Fprintln(os.Stderr, "path or dir flag is required")
		os.Exit(1)
	case *timeline:
		var lines []string
		if lines, err = replayinspect.Timeline(*path); err == nil {
			for _, line := range lines {
				fmt.Println(line)
			}
			return
		}
	default:
		payload, err = replayinspect.Summarize(*path)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(2)
	}

	//1.- Render as JSON so callers can pipe the output elsewhere.
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(payload); err != nil {
		fmt.Fprintln(os.Stderr, "encode error:", err)
		os.Exit(3)
	}
}
