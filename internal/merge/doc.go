// SPDX-License-Identifier: Apache-2.0

// Package merge implements the offline-reconciliation core of the vault:
// last-writer-wins row merging of two divergent snapshots that share a
// common ancestor, and retention-based pruning of soft-deleted rows.
//
// Everything in this package is pure and synchronous. Merge and Prune
// perform no I/O, hold no host dependencies beyond the standard library and
// the models package, and produce deterministic output: given the same
// inputs, the result is byte-identical regardless of table or row iteration
// order. That property is what lets the same engine run unchanged behind
// every client surface.
//
// Which tables participate, which columns identify a row, and which carry
// its timestamps is driven entirely by the [Registry] of per-table
// descriptors; adding a syncable table means adding a descriptor, not merge
// code.
package merge
