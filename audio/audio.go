// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"io"
	"path/filepath"
	"slices"
	"strings"
	"sync"
)

// Source is a stream of interleaved PCM samples.
type Source interface {
	// SampleRate of the stream in Hz.
	SampleRate() int
	// Channels count (1=mono, 2=stereo, ...).
	Channels() int
	// ReadSamples fills dst with interleaved float32 samples in [-1,1] and
	// returns the number of values written (not frames). n == 0 with
	// err == io.EOF means the stream is finished.
	ReadSamples(dst []float32) (n int, err error)
	// Close releases any resources.
	Close() error
}

// Decoder constructs a Source from encoded media.
type Decoder interface {
	Decode(r io.Reader) (Source, error)
}

// Registry maps format keys (usually file extensions such as "wav" or
// "ogg") to decoders. It is safe for concurrent use.
type Registry struct {
	mtx    sync.RWMutex
	codecs map[string]Decoder
}

func NewRegistry() *Registry {
	return &Registry{
		codecs: make(map[string]Decoder),
	}
}

// Register binds d to every given format key. Keys are case-insensitive
// and may carry a leading dot.
func (r *Registry) Register(d Decoder, formats ...string) {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	for _, f := range formats {
		r.codecs[normalizeFormat(f)] = d
	}
}

func (r *Registry) Get(format string) (Decoder, bool) {
	r.mtx.RLock()
	defer r.mtx.RUnlock()

	d, ok := r.codecs[normalizeFormat(format)]
	return d, ok
}

// ForPath picks the decoder registered for the extension of path.
func (r *Registry) ForPath(path string) (Decoder, error) {
	ext := filepath.Ext(path)
	if ext == "" {
		return nil, &FormatError{Path: path}
	}

	d, ok := r.Get(ext)
	if !ok {
		return nil, &FormatError{Path: path, Format: normalizeFormat(ext)}
	}

	return d, nil
}

// Formats lists the registered format keys in sorted order.
func (r *Registry) Formats() []string {
	r.mtx.RLock()
	defer r.mtx.RUnlock()

	out := make([]string, 0, len(r.codecs))
	for k := range r.codecs {
		out = append(out, k)
	}
	slices.Sort(out)

	return out
}

func normalizeFormat(f string) string {
	return strings.ToLower(strings.TrimPrefix(f, "."))
}

// Sized is implemented by sources that know their total length up front.
// Frames reports frames per channel, or a negative value when unknown.
type Sized interface {
	Frames() int64
}
