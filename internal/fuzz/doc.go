// Package fuzztests houses Go fuzz harnesses for the front of the
// pipeline (source -> lexer -> parser -> reparser). The goal is to smoke
// test robustness on arbitrary bytes: no panics, no hangs, and an
// incremental reparse that never disagrees with a full parse.
package fuzztests
