package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	replayplayer "awbrn/engine/tools/replay_player"
)

func main() {
	path := flag.String("path", "", "Path to a replay archive or an exported bundle directory")
	mapFlag := flag.Bool("map", false, "render the board as text instead of emitting the JSON summary")
	turn := flag.Int("turn", -1, "turn to render with -map; -1 renders the final position")
	flag.Parse()

	if *path == "" {
		fmt.Fprintln(os.Stderr, "path flag is required")
		os.Exit(1)
	}

	if *mapFlag {
		board, err := replayplayer.RenderArchive(*path, *turn)
		if err != nil {
			fmt.Fprintln(os.Stderr, "error:", err)
			os.Exit(2)
		}
		fmt.Println(board)
		return
	}

	summary, err := replayplayer.Load(*path)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(2)
	}

	//1.- Render the summary as JSON so callers can pipe the output elsewhere.
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(summary); err != nil {
		fmt.Fprintln(os.Stderr, "encode error:", err)
		os.Exit(3)
	}
}
