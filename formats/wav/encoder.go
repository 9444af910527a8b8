// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"fmt"
	"io"

	goaudio "github.com/go-audio/audio"
	gowav "github.com/go-audio/wav"
	"github.com/ik5/spatialpbx/internal/pcm"
)

// Encode writes interleaved float samples as 16-bit PCM WAV. The writer must
// seek so that the header sizes can be patched once the data is written.
func Encode(w io.WriteSeeker, sampleRate, channels int, samples []float32) error {
	if channels <= 0 || len(samples)%channels != 0 {
		return ErrOddSampleCount
	}

	const depth = 16
	enc := gowav.NewEncoder(w, sampleRate, depth, channels, formatPCM)

	data := make([]int, len(samples))
	for i, s := range samples {
		data[i] = pcm.ToInt(s, depth)
	}

	buf := &goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: channels, SampleRate: sampleRate},
		Data:           data,
		SourceBitDepth: depth,
	}

	if err := enc.Write(buf); err != nil {
		return fmt.Errorf("writing wav samples: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("finalizing wav header: %w", err)
	}

	return nil
}
