package cmd

import (
	"bytes"
	"fmt"
	"io/fs"
	"path/filepath"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var allCmd = &cobra.Command{
	Use:   "all dir...",
	Short: "Round-trips every message found in the given directories",
	Args:  cobra.MinimumNArgs(1),
	RunE:  RunAll,
}

var (
	jobs    int
	pattern string
)

func init() {
	allCmd.Flags().IntVarP(&jobs, "jobs", "j", runtime.NumCPU(), "messages to round-trip at once")
	allCmd.Flags().StringVar(&pattern, "pattern", "*.eml", "file name pattern of messages")
	rootCmd.AddCommand(allCmd)
}

func findMessages(dirs []string) ([]string, error) {
	var paths []string
	for _, dir := range dirs {
		err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				return nil
			}
			if ok, err := filepath.Match(pattern, d.Name()); err != nil || !ok {
				return err
			}
			paths = append(paths, path)
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return paths, nil
}

func RunAll(cmd *cobra.Command, args []string) error {
	paths, err := findMessages(args)
	if err != nil {
		return err
	}

	var (
		mu      sync.Mutex
		differs atomic.Int64
		w       = cmd.OutOrStdout()
	)

	report := func(format string, a ...any) {
		mu.Lock()
		defer mu.Unlock()
		fmt.Fprintf(w, format, a...)
	}

	grp, ctx := errgroup.WithContext(cmd.Context())
	grp.SetLimit(jobs)
	for _, path := range paths {
		path := path
		grp.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			orig, out, err := roundTrip(path)
			if err != nil {
				report("ERROR %s: %v\n", path, err)
				differs.Add(1)
				return nil
			}

			if !bytes.Equal(orig, out) {
				report("DIFF  %s\n", path)
				differs.Add(1)
			}
			return nil
		})
	}

	if err := grp.Wait(); err != nil {
		return err
	}

	report("%d messages, %d failed\n", len(paths), differs.Load())
	if differs.Load() > 0 {
		return fmt.Errorf("%d of %d messages did not round-trip", differs.Load(), len(paths))
	}
	return nil
}
