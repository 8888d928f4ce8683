// Package diag carries diagnostics between engine phases.
//
// Every per-node or per-file failure in the engine becomes a Diagnostic;
// nothing below the workspace layer returns a fatal error for bad source
// text. A Bag caps how many diagnostics one pipeline run may accumulate,
// and its Sort order is part of the engine's determinism contract: two
// analyze runs over the same tree and table must produce byte-identical
// diagnostic lists.
package diag
