// Package media implements paced file streaming and on-disk metadata probes.
package media

import (
	"errors"
	"sync/atomic"
	"time"
)

const (
	// DefaultChunkSize is the fixed read size for streamed files.
	DefaultChunkSize = 8 * 1024

	// MaxRateBytesPerSec is the ceiling for the transfer rate (100 MB/s).
	MaxRateBytesPerSec = 100 * 1024 * 1024
)

// ErrRateOutOfRange is returned when a requested rate is not positive or
// exceeds the ceiling.
var ErrRateOutOfRange = errors.New("download rate out of range")

// Settings is the process-wide transfer configuration. Streams read it
// fresh for every chunk, so rate changes reach in-flight transfers at
// their next chunk boundary.
type Settings struct {
	BytesPerSec int64
	ChunkSize   int
}

// Pacer computes the delay needed to hold a stream at a target average
// byte rate. The settings value is swapped atomically; there is no lock
// on the per-chunk read path.
type Pacer struct {
	settings atomic.Pointer[Settings]
	maxRate  int64
}

// NewPacer creates a pacer with the given initial rate and chunk size.
func NewPacer(bytesPerSec int64, chunkSize int) *Pacer {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	p := &Pacer{maxRate: MaxRateBytesPerSec}
	p.settings.Store(&Settings{BytesPerSec: bytesPerSec, ChunkSize: chunkSize})
	return p
}

// Settings returns the current transfer configuration.
func (p *Pacer) Settings() Settings {
	return *p.settings.Load()
}

// SetRate swaps in a new target rate. Rates that are not positive or
// exceed the ceiling are rejected and leave the current rate untouched.
func (p *Pacer) SetRate(bytesPerSec int64) error {
	if bytesPerSec <= 0 || bytesPerSec > p.maxRate {
		return ErrRateOutOfRange
	}
	cur := p.settings.Load()
	p.settings.Store(&Settings{BytesPerSec: bytesPerSec, ChunkSize: cur.ChunkSize})
	return nil
}

// Delay returns how long the caller must wait before emitting the chunk
// that brings the cumulative total to sent bytes, given the wall time
// already elapsed since the stream started. It is zero whenever the
// stream is on or behind schedule.
func (p *Pacer) Delay(sent int64, elapsed time.Duration) time.Duration {
	rate := p.settings.Load().BytesPerSec
	if rate <= 0 || sent <= 0 {
		return 0
	}
	expected := time.Duration(float64(sent) / float64(rate) * float64(time.Second))
	if d := expected - elapsed; d > 0 {
		return d
	}
	return 0
}
