// SPDX-License-Identifier: EPL-2.0

// Package playback schedules gapless track transitions for a set of
// emitters that advance through the same track sequence in lockstep.
//
// The scheduler holds one session per emitter with the resource currently
// sounding and its prepared successor. The first audible emitter's media
// clock is the reference: when its remaining time reaches the lead time the
// successors are loaded in the background, and when it ends they are
// swapped in. Triggers and load results are queued and applied by Process
// on the simulation clock, so a trigger never runs scheduler code on the
// audio thread.
//
// A successor that fails to load near the end is retried when the track
// ends; if that also fails it is retried at an interval, and the swap
// happens as soon as a load succeeds.
package playback
