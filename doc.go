// SPDX-License-Identifier: EPL-2.0

// Package spatialpbx runs a continuous spatial playback installation.
//
// A fixed ring of emitters each plays an ordered list of tracks. Every
// emitter moves to the same track index together, and the next track is
// decoded in the background before the current one ends so the change is
// gapless. A simulated listener wanders inside the ring (or is steered by
// hand), and each emitter is attenuated and panned relative to that
// listener. Per emitter loudness is exposed for visual feedback.
//
// # Clocks
//
// Two clocks drive an [Engine]. The simulation clock is whoever calls
// [Engine.Tick], usually a game loop at the configured tick rate. The
// media clock is the audio device pulling frames from [Engine.Bus]. Track
// triggers raised on the media clock are queued and applied on the next
// tick, so neither clock ever waits for the other.
//
// # Quick Start
//
//	cfg, _ := config.Load("installation.yaml")
//	eng, _ := spatialpbx.NewFromDir(cfg, "media")
//	defer eng.Destroy()
//
//	_ = eng.Load(ctx)
//	_ = eng.Start()
//
//	player, _ := output.NewPlayer(cfg.Audio.SampleRate, eng.Bus(), 0)
//	player.Play()
//
//	for range time.Tick(cfg.TickInterval()) {
//		eng.Tick(listener.Input{})
//	}
//
// # Packages
//
//   - spatial: emitter layout, distance attenuation, stereo panning
//   - listener: the bounded random walk and manual steering
//   - playback: the gapless track scheduler
//   - mixer: decoded voices and the emitter bus
//   - meter: loudness taps
//   - media, assign: locating and decoding the track files
//   - formats/*: wav, mp3, ogg vorbis and aiff decoders
//   - output: real time audio output
//   - config: YAML configuration
package spatialpbx
