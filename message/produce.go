package message

import (
	"context"
	"io"
)

// Produce turns a function that writes content into a reader of that content.
// The produce function runs in its own goroutine, writing into a pipe that
// the returned reader reads from.
//
// When produce returns nil, the reader reaches io.EOF after the last byte
// written. When it returns an error, the reader returns that error. If ctx
// is canceled first, the reader returns ctx.Err() and further writes fail.
// Closing the reader early causes the writes made by produce to fail with
// io.ErrClosedPipe, so it should return promptly.
func Produce(ctx context.Context, produce func(w io.Writer) error) io.ReadCloser {
	pr, pw := io.Pipe()

	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = pw.CloseWithError(produce(pw))
	}()

	go func() {
		select {
		case <-ctx.Done():
			_ = pw.CloseWithError(ctx.Err())
		case <-done:
		}
	}()

	return pr
}
