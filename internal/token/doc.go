// Package token defines lexical token kinds and trivia for the perlscope
// engine's Perl-subset tokenizer.
// Invariants:
//   - Token.Text is a slice of the original source (no copies).
//   - Token.Span matches Text exactly (Start..End).
//   - Sigil variables ($x, @x, %x) are single tokens, sigil included.
//   - Comments and POD blocks are leading Trivia and never appear in the
//     main token stream.
//   - Builtin function names (print, push, keys, ...) are identifiers.
//     They are recognized by the semantic layer, not the lexer.
package token
