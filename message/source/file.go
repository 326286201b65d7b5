package source

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// file is a ByteSource over a file on disk.
type file struct {
	path   string
	f      *os.File
	opts   *options
	logger *slog.Logger
}

// OpenFile returns a Stream over the message in the named file. Save writes
// the new message to a temporary file beside it and renames that over the
// original.
func OpenFile(path string, opts ...Option) (*Stream, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, ioError("open", -1, errors.Wrapf(err, "unable to open %s", path))
	}

	o := applyOptions(opts)
	return New(&file{
		path:   path,
		f:      f,
		opts:   o,
		logger: o.logger,
	}, opts...), nil
}

func (fs *file) ReadAt(p []byte, off int64) (int, error) {
	n, err := fs.f.ReadAt(p, off)
	if err != nil && err != io.EOF {
		err = errors.Wrapf(err, "unable to read %s", fs.path)
	}
	return n, err
}

func (fs *file) Size() (int64, error) {
	fi, err := fs.f.Stat()
	if err != nil {
		return 0, errors.Wrapf(err, "unable to stat %s", fs.path)
	}
	return fi.Size(), nil
}

func (fs *file) Close() error {
	return fs.f.Close()
}

// tempName returns a path for a temporary copy of the message.
func (fs *file) tempName() string {
	return filepath.Join(fs.opts.tempDirFor(fs.path), "Pantomime-"+uuid.NewString()+".eml")
}

// Save writes r to a temporary file, syncs it, renames it over the original
// and reopens the original path.
func (fs *file) Save(r io.Reader) error {
	tmp := fs.tempName()

	if err := fs.writeTemp(tmp, r); err != nil {
		fs.cleanup(tmp)
		return err
	}

	if err := os.Rename(tmp, fs.path); err != nil {
		fs.cleanup(tmp)
		return errors.Wrapf(err, "unable to replace %s", fs.path)
	}

	f, err := os.Open(fs.path)
	if err != nil {
		return errors.Wrapf(err, "unable to reopen %s", fs.path)
	}

	old := fs.f
	fs.f = f
	if err := old.Close(); err != nil {
		fs.logger.Warn("unable to close replaced file",
			"path", fs.path,
			"error", err)
	}

	fs.logger.Debug("saved message", "path", fs.path)

	return nil
}

func (fs *file) writeTemp(tmp string, r io.Reader) error {
	mode := os.FileMode(0o600)
	if fi, err := fs.f.Stat(); err == nil {
		mode = fi.Mode().Perm()
	}

	w, err := os.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_EXCL, mode)
	if err != nil {
		return errors.Wrapf(err, "unable to create %s", tmp)
	}

	if _, err := io.Copy(w, r); err != nil {
		_ = w.Close()
		return errors.Wrapf(err, "unable to write %s", tmp)
	}

	if err := w.Sync(); err != nil {
		_ = w.Close()
		return errors.Wrapf(err, "unable to sync %s", tmp)
	}

	return errors.Wrapf(w.Close(), "unable to close %s", tmp)
}

// cleanup removes a temporary file left by a failed save. Failing to remove
// it is only logged.
func (fs *file) cleanup(tmp string) {
	if err := os.Remove(tmp); err != nil && !os.IsNotExist(err) {
		fs.logger.Error("unable to remove temporary file",
			"path", tmp,
			"error", err)
	}
}
