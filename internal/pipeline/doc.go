// Package pipeline provides a framework for executing installation steps in
// sequence.
//
// An installation is modeled as an ordered list of steps sharing one mutable
// RunOptions value. Each step reports a tri-state Outcome: continue to the
// next step, fail the run, or skip the remaining steps without error. The
// soft-skip outcome exists so that a step can hand the whole installation
// over to an alternate flow (legacy or offline mode) and still let the run
// finish successfully.
//
// Design decision: steps return a tagged Outcome value instead of a plain
// error because:
//  1. "skip the rest" is a success path, not a failure, and must never be
//     confused with one by a caller inspecting errors
//  2. the driver can switch on the outcome kind without sentinel-error
//     comparisons
//  3. a step's failure error travels inside the outcome and surfaces to the
//     caller unchanged
//
// The pipeline owns a DirStack that records every working-directory change a
// step makes. The unwind phase runs exactly once per execution, on every exit
// path (completion, failure, soft-skip, cancellation), and restores the
// process to the directory it started in. Steps are relieved from cleanup
// discipline: a step may fail after pushing a directory and before popping
// it, and the unwind phase still restores the original directory.
//
// Steps execute strictly sequentially. RunOptions and the directory stack are
// owned by a single running pipeline and are not safe for concurrent use.
package pipeline
