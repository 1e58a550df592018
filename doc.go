// Package deepresearch implements a recursive, bounded-fan-out research
// engine: given a topic, it generates search queries, filters and fetches
// candidate sources, scores their reliability, extracts weighted learnings
// and follow-up questions, and recurses on the follow-ups until a depth
// limit or token budget is reached. The root caller renders the merged
// learnings and sources into a single markdown report.
//
// # Architecture
//
// One call to Engine.Run drives a tree of nodes. Each node runs:
//
//	Plan -> (Search -> PreFilter -> Fetch -> Evaluate -> Extract)* -> Descend
//
// for every SerpQuery the planner produced, fanning the pipeline out
// concurrently (bounded by a shared Governor), then merges its own
// learnings/sources/visited-urls with the seeded accumulators it was
// called with, and — budget permitting — recurses into the follow-up
// questions the extractor produced, with half the breadth and one less
// level of depth.
//
// # Shared state
//
// Exactly one piece of mutable state is shared across the whole tree: the
// *Budget that Engine.Run creates for the invocation. Everything else is threaded by value
// and merged on the way back up.
//
// # Degradation
//
// The engine is built to always produce a report. Search timeouts, fetch
// failures, and evaluator/extractor failures are logged and skipped rather
// than propagated; only provider configuration errors (missing credential,
// malformed model id) abort the call.
package deepresearch
