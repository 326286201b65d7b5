package cmd

import (
	"bytes"
	"context"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/zostay/pantomime/message"
	"github.com/zostay/pantomime/message/source"
)

var rootCmd = &cobra.Command{
	Use:   "roundtrip",
	Short: "Tools for testing message round-tripping",
}

var (
	debug      bool
	windowSize int
)

func init() {
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "log degraded parsing")
	rootCmd.PersistentFlags().IntVar(&windowSize, "window-size", source.DefaultWindowSize, "bytes buffered when reading from a stream")
}

func Execute() error {
	return rootCmd.ExecuteContext(context.Background())
}

func logger() *slog.Logger {
	level := slog.LevelWarn
	if debug {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// load indexes the message file at path. The caller must free the source.
func load(path string) (*source.Stream, *message.Message, error) {
	src, err := source.OpenFile(path,
		source.WithLogger(logger().With("path", path)),
		source.WithWindowSize(windowSize))
	if err != nil {
		return nil, nil, err
	}

	m, err := src.Load()
	if err != nil {
		_ = src.Free()
		return nil, nil, err
	}

	return src, m, nil
}

// roundTrip returns the original bytes of the message file at path and the
// bytes written back out after loading it.
func roundTrip(path string) (orig, out []byte, err error) {
	src, m, err := load(path)
	if err != nil {
		return nil, nil, err
	}
	defer func() { _ = src.Free() }()

	buf := &bytes.Buffer{}
	if _, err := m.WriteTo(buf); err != nil {
		return nil, nil, err
	}

	orig, err = os.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}

	return orig, buf.Bytes(), nil
}
