package media

import (
	"context"
	"errors"
	"io"
	"os"
	"time"
)

// ErrTransferAborted is the distinguished failure raised by fault-injecting
// streams once half the file has been emitted.
var ErrTransferAborted = errors.New("transfer aborted")

// Streamer reads files in fixed-size chunks, gating each chunk through the
// pacer. Chunks are emitted strictly in file byte order.
type Streamer struct {
	pacer *Pacer
}

// NewStreamer creates a streamer paced by p.
func NewStreamer(p *Pacer) *Streamer {
	return &Streamer{pacer: p}
}

// Stream copies the whole file at path into w at the configured rate and
// returns the number of bytes written.
func (s *Streamer) Stream(ctx context.Context, path string, w io.Writer) (int64, error) {
	return s.stream(ctx, path, w, false)
}

// StreamFaulty behaves like Stream until cumulative output reaches half
// the file size, then stops with ErrTransferAborted. Used to exercise
// client-side failure handling against a deterministic mid-transfer drop.
func (s *Streamer) StreamFaulty(ctx context.Context, path string, w io.Writer) (int64, error) {
	return s.stream(ctx, path, w, true)
}

func (s *Streamer) stream(ctx context.Context, path string, w io.Writer, faulty bool) (int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return 0, err
	}
	cutoff := (fi.Size() + 1) / 2

	// Chunk size is fixed per stream; the rate is re-read every chunk.
	buf := make([]byte, s.pacer.Settings().ChunkSize)
	start := time.Now()
	var sent int64

	for {
		if faulty && sent >= cutoff {
			return sent, ErrTransferAborted
		}

		n, readErr := f.Read(buf)
		if n > 0 {
			if err := s.wait(ctx, sent+int64(n), start); err != nil {
				return sent, err
			}
			if _, err := w.Write(buf[:n]); err != nil {
				return sent, err
			}
			sent += int64(n)
		}
		if readErr == io.EOF {
			return sent, nil
		}
		if readErr != nil {
			return sent, readErr
		}
	}
}

// wait sleeps until the cumulative total may be emitted, or the consumer
// cancels. No pending timer survives cancellation.
func (s *Streamer) wait(ctx context.Context, total int64, start time.Time) error {
	d := s.pacer.Delay(total, time.Since(start))
	if d <= 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
			return nil
		}
	}

	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
