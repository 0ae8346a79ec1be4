package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/mattn/go-isatty"

	"pdoom/internal/config"
	"pdoom/internal/game"
	"pdoom/internal/guide"
	"pdoom/internal/player"
	"pdoom/internal/score"
	"pdoom/internal/tui"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		log.Fatal(err)
	}
}

func interactive(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func run(args []string) error {
	flags := flag.NewFlagSet("pdoom", flag.ContinueOnError)
	configPath := flags.String("config", config.DefaultPath, "path to pdoom_config.yml")
	dataDir := flags.String("data-dir", "", "directory for saves, scores and settings")
	seed := flags.String("seed", "", "run seed (defaults to this week's seed)")
	difficulty := flags.String("difficulty", "", "balance preset: casual, default or hard")
	cont := flags.Bool("continue", false, "resume the autosaved run")
	if err := flags.Parse(args); err != nil {
		return err
	}
	if !interactive(os.Stdin) || !interactive(os.Stdout) {
		return errors.New("pdoom needs an interactive terminal; run cmd/server for the HTTP API")
	}

	cfg, err := config.LoadOrDefault(*configPath)
	if err != nil {
		log.Printf("config: %v (using defaults)", err)
	}
	if *difficulty != "" {
		cfg.Difficulty = *difficulty
		cfg.Balance = config.Preset(*difficulty)
	}
	cfg.Balance = config.FromEnv(cfg.Balance)
	if *dataDir == "" {
		*dataDir = cfg.DataDir
	}
	if err := os.MkdirAll(*dataDir, 0o755); err != nil {
		return err
	}

	players, err := player.NewFileRepo(*dataDir)
	if err != nil {
		if players == nil {
			return err
		}
		log.Printf("settings: %v (reset to defaults)", err)
	}
	highScores, err := score.NewFileRepo(*dataDir, cfg.Server.ScoreboardLimit)
	if err != nil {
		if highScores == nil {
			return err
		}
		log.Printf("scores: %v (starting a fresh table)", err)
	}
	history, err := score.NewSQLiteRepo(filepath.Join(*dataDir, score.DBFileName))
	if err != nil {
		return err
	}
	defer history.Close()

	saves, err := game.NewSaveStore(filepath.Join(*dataDir, "saves"))
	if err != nil {
		return err
	}
	guideText, err := guide.Load(cfg.Player.GuidePath)
	if err != nil {
		log.Printf("guide: %v (using built-in guide)", err)
	}

	newGame := func() (*game.Game, error) {
		bal := cfg.Balance
		return game.New(game.Options{ID: uuid.NewString(), Seed: *seed, Balance: &bal})
	}

	var g *game.Game
	if *cont {
		g, err = saves.Load(tui.AutosaveSlot, game.Options{})
		if errors.Is(err, game.ErrNotFound) {
			fmt.Println("No autosave found, starting a new run.")
		} else if err != nil {
			return err
		}
	}
	if g == nil {
		if g, err = newGame(); err != nil {
			return err
		}
	}

	app, err := tui.NewApp(tui.Options{
		Game:       g,
		Players:    players,
		Scores:     score.Multi{highScores, history},
		Saves:      saves,
		Guide:      guideText,
		ScoreLimit: cfg.Server.ScoreboardLimit,
		NewGame:    newGame,
	})
	if err != nil {
		return err
	}
	return app.Run()
}
