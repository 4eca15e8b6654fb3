// Package flows implements the alternate installation flows selected by the
// mode dispatch step.
//
// Each flow has its own run contract, Run(ctx, opts) error, and internally
// assembles its own pipeline from the shared step implementations. The flow
// seeds that pipeline with a fresh option set: the instance name and target
// directory are re-injected from the outer run, while flow-specific values
// (the legacy repository URL, derived setup options) never leak into the
// caller's options.
//
// A flow that returns nil tells the dispatch step to soft-skip the rest of
// the default pipeline; an error propagates unchanged and fails the run.
package flows
