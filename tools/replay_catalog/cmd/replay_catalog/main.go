package main

import (
	"flag"
	"fmt"
	"os"

	replaycatalog "awbrn/engine/tools/replay_catalog"
)

func main() {
	root := flag.String("dir", ".", "directory containing replay archives or exported bundles")
	cache := flag.String("cache", "", "bundle cache directory; when set, archives are exported into it first")
	jsonFlag := flag.Bool("json", false, "emit JSON instead of human-readable output")
	flag.Parse()

	var entries []replaycatalog.Entry
	var err error
	if *cache != "" {
		entries, err = replaycatalog.Refresh(*root, *cache)
	} else {
		entries, err = replaycatalog.List(*root)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if *jsonFlag {
		payload, err := replaycatalog.MarshalEntries(entries)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		fmt.Println(string(payload))
		return
	}

	for _, entry := range entries {
		fmt.Printf("%s (%s)\n", entry.Path, entry.Source)
		if entry.GameName != "" {
			fmt.Printf("  game: %s (#%d)\n", entry.GameName, entry.GameID)
		}
		fmt.Printf("  map: %d\n", entry.MapID)
		fmt.Printf("  days: %d turns: %d\n", entry.Days, entry.Turns)
	}
}
