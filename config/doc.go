// SPDX-License-Identifier: EPL-2.0

// Package config loads installation settings from YAML. Every field has a
// default, so a file only needs the settings it changes:
//
//	radius: 6
//	boundaries: {soft: 2, hard: 5}
//	playback:
//	  lead_time: 15s
//	log: {level: debug}
package config
