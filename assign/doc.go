// SPDX-License-Identifier: EPL-2.0

// Package assign maps each emitter's track slots to media. Assignments are
// all or nothing: the engine only accepts one where every slot is filled.
package assign
