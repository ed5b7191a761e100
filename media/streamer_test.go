package media

import (
	"bytes"
	"context"
	"crypto/rand"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeFixture(t *testing.T, size int) string {
	t.Helper()
	data := make([]byte, size)
	if _, err := rand.Read(data); err != nil {
		t.Fatalf("rand failed: %v", err)
	}
	path := filepath.Join(t.TempDir(), "fixture.bin")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write fixture failed: %v", err)
	}
	return path
}

func TestStreamEmitsWholeFile(t *testing.T) {
	const size = 40 * 1024
	path := writeFixture(t, size)

	s := NewStreamer(NewPacer(MaxRateBytesPerSec, 8*1024))
	var buf bytes.Buffer
	sent, err := s.Stream(context.Background(), path, &buf)
	if err != nil {
		t.Fatalf("Stream failed: %v", err)
	}
	if sent != size || buf.Len() != size {
		t.Fatalf("expected %d bytes, sent %d, wrote %d", size, sent, buf.Len())
	}

	want, _ := os.ReadFile(path)
	if !bytes.Equal(want, buf.Bytes()) {
		t.Fatal("streamed bytes differ from file contents")
	}
}

func TestStreamRespectsRateFloor(t *testing.T) {
	const size = 8 * 1024
	path := writeFixture(t, size)

	// 8 KiB at 32 KiB/s needs at least 250ms of wall time.
	s := NewStreamer(NewPacer(32*1024, 1024))
	start := time.Now()
	var buf bytes.Buffer
	if _, err := s.Stream(context.Background(), path, &buf); err != nil {
		t.Fatalf("Stream failed: %v", err)
	}
	if elapsed := time.Since(start); elapsed < 250*time.Millisecond {
		t.Fatalf("stream finished too fast: %v", elapsed)
	}
}

func TestStreamFaultyAbortsNearHalf(t *testing.T) {
	const size = 64 * 1024
	const chunk = 8 * 1024
	path := writeFixture(t, size)

	s := NewStreamer(NewPacer(MaxRateBytesPerSec, chunk))
	var buf bytes.Buffer
	sent, err := s.StreamFaulty(context.Background(), path, &buf)
	if !errors.Is(err, ErrTransferAborted) {
		t.Fatalf("expected ErrTransferAborted, got %v", err)
	}

	cutoff := int64((size + 1) / 2)
	if sent < cutoff || sent >= cutoff+chunk {
		t.Fatalf("aborted at %d bytes, want within [%d, %d)", sent, cutoff, cutoff+chunk)
	}
	if int64(buf.Len()) != sent {
		t.Fatalf("writer saw %d bytes, streamer reported %d", buf.Len(), sent)
	}
}

func TestStreamFaultyEmptyFile(t *testing.T) {
	path := writeFixture(t, 0)

	s := NewStreamer(NewPacer(MaxRateBytesPerSec, 1024))
	var buf bytes.Buffer
	sent, err := s.StreamFaulty(context.Background(), path, &buf)
	if !errors.Is(err, ErrTransferAborted) {
		t.Fatalf("expected ErrTransferAborted, got %v", err)
	}
	if sent != 0 {
		t.Fatalf("expected 0 bytes for empty file, got %d", sent)
	}
}

func TestStreamCancellation(t *testing.T) {
	const size = 256 * 1024
	path := writeFixture(t, size)

	// Slow enough that the stream cannot finish before the deadline.
	s := NewStreamer(NewPacer(1024, 8*1024))
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	var buf bytes.Buffer
	sent, err := s.Stream(ctx, path, &buf)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline error, got %v", err)
	}
	if sent >= size {
		t.Fatalf("cancelled stream emitted the whole file")
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Fatalf("cancellation did not release the pending delay promptly: %v", elapsed)
	}
}

func TestStreamMissingFile(t *testing.T) {
	s := NewStreamer(NewPacer(MaxRateBytesPerSec, 1024))
	var buf bytes.Buffer
	if _, err := s.Stream(context.Background(), filepath.Join(t.TempDir(), "nope.bin"), &buf); err == nil {
		t.Fatal("expected error for missing file")
	}
}
