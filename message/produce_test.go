package message_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zostay/pantomime/message"
)

func TestProduce(t *testing.T) {
	t.Parallel()

	r := message.Produce(context.Background(), func(w io.Writer) error {
		for i := 0; i < 3; i++ {
			if _, err := fmt.Fprintf(w, "line %d\n", i); err != nil {
				return err
			}
		}
		return nil
	})
	defer func() { _ = r.Close() }()

	b, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "line 0\nline 1\nline 2\n", string(b))
}

func TestProduce_Error(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	r := message.Produce(context.Background(), func(w io.Writer) error {
		_, _ = io.WriteString(w, "partial")
		return boom
	})
	defer func() { _ = r.Close() }()

	b, err := io.ReadAll(r)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, "partial", string(b))
}

func TestProduce_Cancel(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	r := message.Produce(ctx, func(w io.Writer) error {
		_, _ = io.WriteString(w, "x")
		<-ctx.Done()
		for {
			if _, err := io.WriteString(w, "y"); err != nil {
				done <- err
				return err
			}
		}
	})
	defer func() { _ = r.Close() }()

	buf := make([]byte, 1)
	_, err := io.ReadFull(r, buf)
	require.NoError(t, err)

	cancel()

	_, err = io.ReadAll(r)
	assert.ErrorIs(t, err, context.Canceled)

	select {
	case err := <-done:
		assert.Error(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("producer did not finish after cancel")
	}
}

func TestProduce_EarlyClose(t *testing.T) {
	t.Parallel()

	done := make(chan error, 1)
	r := message.Produce(context.Background(), func(w io.Writer) error {
		for {
			if _, err := io.WriteString(w, "more"); err != nil {
				done <- err
				return err
			}
		}
	})

	buf := make([]byte, 4)
	_, err := io.ReadFull(r, buf)
	require.NoError(t, err)
	require.NoError(t, r.Close())

	select {
	case err := <-done:
		assert.ErrorIs(t, err, io.ErrClosedPipe)
	case <-time.After(5 * time.Second):
		t.Fatal("producer did not stop after close")
	}
}

func TestOpenProducer(t *testing.T) {
	t.Parallel()

	calls := 0
	open := message.OpenProducer(context.Background(), func(w io.Writer) error {
		calls++
		_, err := io.WriteString(w, "again")
		return err
	})

	for i := 0; i < 2; i++ {
		r, err := open()
		require.NoError(t, err)
		b, err := io.ReadAll(r)
		require.NoError(t, err)
		require.NoError(t, r.Close())
		assert.Equal(t, "again", string(b))
	}

	assert.Equal(t, 2, calls)
}
