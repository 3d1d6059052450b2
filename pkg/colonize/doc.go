// Package colonize implements the space colonization growth loop.
//
// # Overview
//
// A run grows a [tree.Tree] toward a field of attractors produced by a
// [field.Generator]. Every tick performs three passes over the pre-tick state:
//
//  1. Association: each live attractor finds its nearest node through a
//     [NearestIndex].
//  2. Growth ([Engine]): every node with at least one associated attractor
//     grows one child of length StepSize along the re-normalised mean of the
//     unit directions toward its attractors. New nodes are appended as one
//     batch, in parent-index order, respecting the node cap.
//  3. Pruning ([Pruner]): the stagnation [Tracker] is updated for every live
//     attractor, then attractors are removed if they stagnated for
//     StagnationLimit ticks or lie within KillDistance of any node.
//
// [Simulation] drives the ticks through the phases Seeding, Growing and
// Terminated, and reports status, progress and snapshots to an [Observer].
// [Stream] adapts an Observer onto an ordered channel for consumers running on
// another goroutine.
//
// # Termination
//
// A run stops when no live attractors remain (ReasonExhausted), when the node
// count reaches MaxNodes (ReasonNodeCap), or immediately after seeding when
// the generator produced nothing (ReasonEmptyField). Configurations without
// any guarantee of termination are rejected by [Config.Validate].
//
// # Determinism
//
// All randomness flows from the *rand.Rand passed with [WithRand] or derived
// from [WithSeed]. Two runs with the same configuration and seed produce
// identical trees when the default [BruteForce] index is used.
package colonize
