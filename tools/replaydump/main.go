package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"tower-server/internal/domain"
	"tower-server/internal/infrastructure/storage"
)

const defaultFPS = 30

func main() {
	if len(os.Args) < 3 {
		printHelp()
		return
	}

	rec, err := load(os.Args[2])
	if err != nil {
		fmt.Printf("Cannot read replay: %v\n", err)
		os.Exit(1)
	}

	switch os.Args[1] {
	case "info":
		printInfo(rec)
	case "actions":
		fps := defaultFPS
		if len(os.Args) > 3 {
			fps, err = strconv.Atoi(os.Args[3])
			if err != nil || fps <= 0 {
				fmt.Printf("Invalid fps: %s\n", os.Args[3])
				return
			}
		}
		printActions(rec, fps)
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(rec); err != nil {
			fmt.Printf("Encode error: %v\n", err)
		}
	default:
		printHelp()
	}
}

func load(path string) (*domain.ReplaySession, error) {
	return storage.NewReplayService(filepath.Dir(path)).Load(path)
}

func printInfo(rec *domain.ReplaySession) {
	fmt.Printf("Recorded: %s\n", time.Unix(rec.Timestamp, 0).Format(time.RFC3339))
	fmt.Printf("Seed:     %d (draws %d)\n", rec.Seed, rec.Draws)
	fmt.Printf("Start:    %s level %d,%d tile %d,%d\n",
		rec.Start.Region, rec.Start.Level.X, rec.Start.Level.Y, rec.Start.Tile.X, rec.Start.Tile.Y)
	if p := rec.Player; p != nil {
		fmt.Printf("Player:   %s hp %d/%d ammo %d (resumed)\n", p.Name, p.Health, p.MaxHealth, p.Ammo)
	} else {
		fmt.Println("Player:   from template")
	}
	fmt.Printf("Actions:  %d\n", len(rec.Actions))
}

func printActions(rec *domain.ReplaySession, fps int) {
	for _, a := range rec.Actions {
		at := time.Duration(a.Frame) * time.Second / time.Duration(fps)
		fmt.Printf("%6d  %9s  %-10s %s\n", a.Frame, at.Truncate(time.Millisecond), a.Action, a.Dir)
	}
}

func printHelp() {
	fmt.Println(`Replay Dump - просмотр файлов .twrp
Commands:
  info <file>            - сид, стартовый портал, время записи
  actions <file> [fps]   - команды по кадрам (fps по умолчанию 30)
  json <file>            - вся запись в JSON`)
}
