package source

import (
	"io"
	"log/slog"
	"path/filepath"
)

// DefaultWindowSize is the number of bytes a windowed source keeps in memory.
const DefaultWindowSize = 5 * 1024 * 1024

type options struct {
	logger     *slog.Logger
	windowSize int
	tempDir    string
	saveFunc   func(io.Reader) error
}

func defaultOptions() *options {
	return &options{
		logger:     slog.Default(),
		windowSize: DefaultWindowSize,
	}
}

// Option configures a source.
type Option func(*options)

// WithLogger sets the logger used to trace index lookups and report cleanup
// failures.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithWindowSize sets the number of bytes a windowed source keeps in memory.
// Values less than 1 are ignored.
func WithWindowSize(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.windowSize = n
		}
	}
}

// WithTempDir sets where a file source writes the temporary file used while
// saving. The default is the directory holding the file, so that the final
// rename stays on one file system.
func WithTempDir(dir string) Option {
	return func(o *options) {
		o.tempDir = dir
	}
}

// WithSaveFunc sets the function Save hands the new message bytes to. This
// makes a windowed source writable. The source is read again from its opener
// after a save.
func WithSaveFunc(save func(io.Reader) error) Option {
	return func(o *options) {
		o.saveFunc = save
	}
}

func applyOptions(opts []Option) *options {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// tempDirFor returns the directory a temporary file for path goes in.
func (o *options) tempDirFor(path string) string {
	if o.tempDir != "" {
		return o.tempDir
	}
	return filepath.Dir(path)
}
