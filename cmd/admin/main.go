package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"

	"evolution.game/internal/persistence/indexdb"
)

func main() {
	if len(os.Args) >= 2 {
		switch os.Args[1] {
		case "games":
			gamesCmd(os.Args[2:])
			return
		case "top":
			topCmd(os.Args[2:])
			return
		case "game":
			gameCmd(os.Args[2:])
			return
		}
	}
	listCmd(os.Args[1:])
}

func listCmd(args []string) {
	fs := flag.NewFlagSet("admin", flag.ExitOnError)
	dataDir := fs.String("data", "./data", "runtime data directory")
	_ = fs.Parse(args)

	entries, err := os.ReadDir(filepath.Join(*dataDir, "games"))
	if err != nil {
		fmt.Fprintln(os.Stderr, "read:", err)
		os.Exit(1)
	}
	for _, e := range entries {
		if e.IsDir() {
			fmt.Println(e.Name())
		}
	}
}

func openIndex(dataDir string) *indexdb.SQLiteIndex {
	idx, err := indexdb.OpenSQLite(filepath.Join(dataDir, "index", "games.sqlite"))
	if err != nil {
		fmt.Fprintln(os.Stderr, "open index:", err)
		os.Exit(1)
	}
	return idx
}

func gamesCmd(args []string) {
	fs := flag.NewFlagSet("games", flag.ExitOnError)
	dataDir := fs.String("data", "./data", "runtime data directory")
	limit := fs.Int("limit", 20, "max rows")
	_ = fs.Parse(args)

	idx := openIndex(*dataDir)
	defer idx.Close()
	rows, err := idx.RecentGames(context.Background(), *limit)
	if err != nil {
		fmt.Fprintln(os.Stderr, "query:", err)
		os.Exit(1)
	}
	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "GAME\tENDED\tPLAYERS\tTURNS\tDISQ\tSEED")
	for _, g := range rows {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%d\t%d\n", g.GameID, g.EndedAt, g.Players, g.Turns, g.Disqualified, g.Seed)
	}
	_ = tw.Flush()
}

func topCmd(args []string) {
	fs := flag.NewFlagSet("top", flag.ExitOnError)
	dataDir := fs.String("data", "./data", "runtime data directory")
	limit := fs.Int("limit", 10, "max rows")
	_ = fs.Parse(args)

	idx := openIndex(*dataDir)
	defer idx.Close()
	rows, err := idx.TopScores(context.Background(), *limit)
	if err != nil {
		fmt.Fprintln(os.Stderr, "query:", err)
		os.Exit(1)
	}
	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tGAMES\tWINS\tBEST\tTOTAL\tFAULTS")
	for _, r := range rows {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%d\t%d\n", r.Name, r.Games, r.Wins, r.Best, r.Total, r.Faults)
	}
	_ = tw.Flush()
}

func gameCmd(args []string) {
	fs := flag.NewFlagSet("game", flag.ExitOnError)
	dataDir := fs.String("data", "./data", "runtime data directory")
	gameID := fs.String("id", "", "game id")
	_ = fs.Parse(args)

	if *gameID == "" {
		fmt.Fprintln(os.Stderr, "missing -id")
		os.Exit(2)
	}
	idx := openIndex(*dataDir)
	defer idx.Close()
	ctx := context.Background()
	g, ok, err := idx.Game(ctx, *gameID)
	if err != nil {
		fmt.Fprintln(os.Stderr, "query:", err)
		os.Exit(1)
	}
	if !ok {
		fmt.Fprintln(os.Stderr, "no such game:", *gameID)
		os.Exit(1)
	}
	fmt.Printf("game=%s seed=%d turns=%d started=%s ended=%s snapshot=%s\n", g.GameID, g.Seed, g.Turns, g.StartedAt, g.EndedAt, g.SnapshotPath)
	res, err := idx.Results(ctx, *gameID)
	if err != nil {
		fmt.Fprintln(os.Stderr, "query:", err)
		os.Exit(1)
	}
	for _, r := range res {
		if r.Disqualified {
			fmt.Printf("  --  player %d %s disqualified\n", r.PlayerID, r.Name)
			continue
		}
		fmt.Printf("  #%d player %d %s score=%d\n", r.Rank, r.PlayerID, r.Name, r.Score)
	}
}
