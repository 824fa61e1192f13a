// internal/sink/recorder/recorder.go
package recorder

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/fxamacker/cbor/v2"

	"github.com/tamzrod/water-probe-monitor/internal/probe"
)

var encMode cbor.EncMode

func init() {
	opts := cbor.CoreDetEncOptions()
	opts.Time = cbor.TimeRFC3339Nano
	m, err := opts.EncMode()
	if err != nil {
		panic(err)
	}
	encMode = m
}

// Recorder appends measurements to a stream as a sequence of CBOR items.
type Recorder struct {
	mu     sync.Mutex
	enc    *cbor.Encoder
	closer io.Closer
}

// New records into w. Closing the recorder does not close w.
func New(w io.Writer) *Recorder {
	return &Recorder{enc: encMode.NewEncoder(w)}
}

// Open appends to the file at path, creating it if needed.
func Open(path string) (*Recorder, error) {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("recorder: %w", err)
	}
	r := New(f)
	r.closer = f
	return r, nil
}

func (r *Recorder) Name() string { return "recorder" }

// WriteMeasurement implements output.Sink.
func (r *Recorder) WriteMeasurement(m probe.Measurement) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.enc == nil {
		return os.ErrClosed
	}
	if err := r.enc.Encode(m); err != nil {
		return fmt.Errorf("recorder: %w", err)
	}
	return nil
}

func (r *Recorder) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.enc = nil
	if r.closer == nil {
		return nil
	}
	err := r.closer.Close()
	r.closer = nil
	return err
}

// Replay decodes every recorded measurement in rd and calls fn for each,
// stopping at the first error fn returns.
func Replay(rd io.Reader, fn func(probe.Measurement) error) error {
	dec := cbor.NewDecoder(rd)
	for {
		var m probe.Measurement
		err := dec.Decode(&m)
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("recorder: replay: %w", err)
		}
		if err := fn(m); err != nil {
			return err
		}
	}
}
