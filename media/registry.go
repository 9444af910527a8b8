// SPDX-License-Identifier: EPL-2.0

package media

import (
	"github.com/ik5/spatialpbx/audio"
	"github.com/ik5/spatialpbx/formats/aiff"
	"github.com/ik5/spatialpbx/formats/mp3"
	"github.com/ik5/spatialpbx/formats/vorbis"
	"github.com/ik5/spatialpbx/formats/wav"
)

// DefaultRegistry knows every format shipped with the module.
func DefaultRegistry() *audio.Registry {
	reg := audio.NewRegistry()
	reg.Register(wav.Decoder{}, "wav", "wave")
	reg.Register(mp3.Decoder{}, "mp3")
	reg.Register(vorbis.Decoder{}, "ogg", "oga")
	reg.Register(aiff.Decoder{}, "aiff", "aif")
	return reg
}
