// Package ldbstore persists strategy profiles and solver checkpoints in a
// LevelDB database, so that strategies can be queried without loading a
// whole profile into memory.
package ldbstore
