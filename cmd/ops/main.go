package main

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"time"

	"pdoom/internal/ops"
)

type command struct {
	name  string
	usage string
	run   func(args []string) error
}

var commands = []command{
	{"backup", "--data-dir data --out backups/backup.tar.gz", cmdBackup},
	{"restore", "--archive backups/backup.tar.gz --target-dir data-restored", cmdRestore},
	{"drill", "--data-dir data --work-dir /tmp", cmdDrill},
	{"verify", "--data-dir data", cmdVerify},
	{"scores", "--data-dir data --per-seed 5", cmdScores},
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(2)
	}
	for _, c := range commands {
		if c.name != os.Args[1] {
			continue
		}
		if err := c.run(os.Args[2:]); err != nil {
			fmt.Fprintf(os.Stderr, "%s failed: %v\n", c.name, err)
			os.Exit(1)
		}
		return
	}
	printUsage()
	os.Exit(2)
}

func cmdBackup(args []string) error {
	flags := flag.NewFlagSet("backup", flag.ContinueOnError)
	dataDir := flags.String("data-dir", "data", "path to data directory")
	out := flags.String("out", "", "output archive path (.tar.gz)")
	if err := flags.Parse(args); err != nil {
		return err
	}

	if *out == "" {
		ts := time.Now().UTC().Format("20060102T150405Z")
		*out = filepath.Join("backups", "pdoom-"+ts+".tar.gz")
	}

	if err := ops.BackupDataDir(*dataDir, *out); err != nil {
		return err
	}
	fmt.Println(*out)
	return nil
}

func cmdRestore(args []string) error {
	flags := flag.NewFlagSet("restore", flag.ContinueOnError)
	archive := flags.String("archive", "", "input backup archive (.tar.gz)")
	target := flags.String("target-dir", "data-restored", "restore target directory")
	if err := flags.Parse(args); err != nil {
		return err
	}
	if *archive == "" {
		return fmt.Errorf("archive is required")
	}
	return ops.RestoreDataDir(*archive, *target)
}

func cmdDrill(args []string) error {
	flags := flag.NewFlagSet("drill", flag.ContinueOnError)
	dataDir := flags.String("data-dir", "data", "path to data directory")
	workDir := flags.String("work-dir", os.TempDir(), "temporary workspace for drill artifacts")
	if err := flags.Parse(args); err != nil {
		return err
	}

	if err := os.MkdirAll(*workDir, 0o755); err != nil {
		return err
	}
	ts := time.Now().UTC().Format("20060102T150405Z")
	archive := filepath.Join(*workDir, "pdoom-drill-"+ts+".tar.gz")
	restoreDir := filepath.Join(*workDir, "pdoom-drill-restore-"+ts)

	if err := ops.BackupDataDir(*dataDir, archive); err != nil {
		return err
	}
	if err := ops.RestoreDataDir(archive, restoreDir); err != nil {
		return err
	}

	problems, err := ops.VerifyDataDir(context.Background(), restoreDir)
	if err != nil {
		return err
	}
	if len(problems) > 0 {
		return fmt.Errorf("restored data dir has %d unreadable files, first: %s", len(problems), problems[0])
	}

	srcDigest, err := dirDigest(*dataDir)
	if err != nil {
		return err
	}
	restoreDigest, err := dirDigest(restoreDir)
	if err != nil {
		return err
	}
	if srcDigest != restoreDigest {
		return fmt.Errorf("digest mismatch after restore: src=%s restored=%s", srcDigest, restoreDigest)
	}

	fmt.Println("backup:", archive)
	fmt.Println("restored:", restoreDir)
	fmt.Println("digest:", srcDigest)
	return nil
}

func cmdVerify(args []string) error {
	flags := flag.NewFlagSet("verify", flag.ContinueOnError)
	dataDir := flags.String("data-dir", "data", "path to data directory")
	if err := flags.Parse(args); err != nil {
		return err
	}
	problems, err := ops.VerifyDataDir(context.Background(), *dataDir)
	if err != nil {
		return err
	}
	for _, p := range problems {
		fmt.Println(p)
	}
	if len(problems) > 0 {
		return fmt.Errorf("%d unreadable files", len(problems))
	}
	fmt.Println("ok")
	return nil
}

func cmdScores(args []string) error {
	flags := flag.NewFlagSet("scores", flag.ContinueOnError)
	dataDir := flags.String("data-dir", "data", "path to data directory")
	perSeed := flags.Int("per-seed", 5, "runs listed for each seed")
	if err := flags.Parse(args); err != nil {
		return err
	}
	return ops.WriteReport(context.Background(), os.Stdout, *dataDir, *perSeed)
}

// dirDigest hashes file names and contents, skipping the files backups leave out.
func dirDigest(root string) (string, error) {
	root = filepath.Clean(root)
	entries := []string{}
	if err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || ops.IsTransient(d.Name()) {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		entries = append(entries, filepath.ToSlash(rel))
		return nil
	}); err != nil {
		return "", err
	}
	sort.Strings(entries)

	h := sha256.New()
	for _, rel := range entries {
		_, _ = io.WriteString(h, rel)
		_, _ = io.WriteString(h, "\n")
		b, err := os.ReadFile(filepath.Join(root, rel))
		if err != nil {
			return "", err
		}
		if _, err := h.Write(b); err != nil {
			return "", err
		}
		_, _ = io.WriteString(h, "\n")
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

func printUsage() {
	fmt.Println("usage:")
	for _, c := range commands {
		fmt.Printf("  pdoom-ops %-8s %s\n", c.name, c.usage)
	}
}
