package ops

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/dustin/go-humanize"

	"pdoom/internal/player"
	"pdoom/internal/score"
)

// Problem is a data file that failed verification.
type Problem struct {
	Path string
	Err  error
}

func (p Problem) String() string { return p.Path + ": " + p.Err.Error() }

// VerifyDataDir checks that every JSON file under dir parses and that the run
// history database opens. Missing files are not problems; a fresh install has none.
func VerifyDataDir(ctx context.Context, dir string) ([]Problem, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("data dir is not a directory: %s", dir)
	}

	var problems []Problem
	err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() || filepath.Ext(path) != ".json" {
			return nil
		}
		b, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		var v any
		if err := json.Unmarshal(b, &v); err != nil {
			rel, _ := filepath.Rel(dir, path)
			problems = append(problems, Problem{Path: filepath.ToSlash(rel), Err: err})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	dbPath := filepath.Join(dir, score.DBFileName)
	if _, err := os.Stat(dbPath); err == nil {
		if _, err := readSummary(ctx, dbPath); err != nil {
			problems = append(problems, Problem{Path: score.DBFileName, Err: err})
		}
	} else if !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}
	return problems, nil
}

func readSummary(ctx context.Context, dbPath string) (score.Summary, error) {
	repo, err := score.NewSQLiteRepo(dbPath)
	if err != nil {
		return score.Summary{}, err
	}
	defer repo.Close()
	return repo.Summary(ctx)
}

// WriteReport prints the run history and the best runs of each seed.
func WriteReport(ctx context.Context, w io.Writer, dir string, perSeed int) error {
	repo, err := score.NewSQLiteRepo(filepath.Join(dir, score.DBFileName))
	if err != nil {
		return err
	}
	defer repo.Close()

	sum, err := repo.Summary(ctx)
	if err != nil {
		return err
	}
	name := "unknown"
	if players, err := player.NewFileRepo(dir); players != nil {
		name = players.Get().PlayerName
		if err != nil {
			name += " (settings unreadable)"
		}
	}

	fmt.Fprintf(w, "director:   %s\n", name)
	fmt.Fprintf(w, "runs:       %s across %s seeds\n", humanize.Comma(int64(sum.Runs)), humanize.Comma(int64(sum.Seeds)))
	if sum.Runs == 0 {
		return nil
	}
	fmt.Fprintf(w, "wins:       %d (%s%%)\n", sum.Wins, humanize.FormatFloat("#.#", 100*float64(sum.Wins)/float64(sum.Runs)))
	fmt.Fprintf(w, "best run:   %d turns\n", sum.BestTurns)
	fmt.Fprintf(w, "average:    %s turns, final doom %s\n",
		humanize.FormatFloat("#.#", sum.AvgTurns), humanize.FormatFloat("#.#", sum.AvgDoom))

	outcomes := make([]string, 0, len(sum.Outcomes))
	for o := range sum.Outcomes {
		outcomes = append(outcomes, o)
	}
	sort.Strings(outcomes)
	fmt.Fprintln(w, "outcomes:")
	for _, o := range outcomes {
		fmt.Fprintf(w, "  %-14s %d\n", o, sum.Outcomes[o])
	}

	all, err := repo.All(ctx)
	if err != nil {
		return err
	}
	bySeed := map[string][]score.Entry{}
	var seeds []string
	for _, e := range all {
		if _, ok := bySeed[e.Seed]; !ok {
			seeds = append(seeds, e.Seed)
		}
		if len(bySeed[e.Seed]) < perSeed {
			bySeed[e.Seed] = append(bySeed[e.Seed], e)
		}
	}
	sort.Strings(seeds)
	for _, seed := range seeds {
		fmt.Fprintf(w, "\nseed %s\n", seed)
		for i, e := range bySeed[seed] {
			fmt.Fprintf(w, "  %-4s %-16s %3d turns  doom %3d  %-13s %s\n",
				humanize.Ordinal(i+1), e.Player, e.TurnsSurvived, e.FinalDoom, e.Outcome, humanize.Time(e.PlayedAt))
		}
	}
	return nil
}
