package diag

import (
	"fmt"
)

type Code uint16

const (
	UnknownCode Code = 0

	// Lexical
	LexInfo               Code = 1000
	LexUnknownChar        Code = 1001
	LexUnterminatedString Code = 1002
	LexUnterminatedRegex  Code = 1003
	LexUnterminatedQw     Code = 1004
	LexUnsupportedDeref   Code = 1005

	// Syntactic
	SynInfo              Code = 2000
	SynUnexpectedToken   Code = 2001
	SynExpectSemicolon   Code = 2002
	SynExpectIdentifier  Code = 2003
	SynExpectVariable    Code = 2004
	SynUnclosedParen     Code = 2005
	SynUnclosedBrace     Code = 2006
	SynUnclosedBracket   Code = 2007
	SynExpectBlock       Code = 2008
	SynExpectExpression  Code = 2009
	SynBadDeclaration    Code = 2010
	SynBadForHeader      Code = 2011
	SynExpectPackageName Code = 2012
	SynExpectSubName     Code = 2013

	// Semantic
	SemInfo                 Code = 3000
	SemUnresolvedIdentifier Code = 3001
	SemUnresolvedVariable   Code = 3002
	SemRedeclaration        Code = 3003
	SemUnusedVariable       Code = 3004

	// Workspace / I/O
	IOLoadFileError     Code = 4000
	IdxResourceCapFiles Code = 4001
	IdxResourceCapSyms  Code = 4002
)

var codeNames = map[Code]string{
	UnknownCode:           "unknown",
	LexInfo:               "lex-info",
	LexUnknownChar:        "lex-unknown-char",
	LexUnterminatedString: "lex-unterminated-string",
	LexUnterminatedRegex:  "lex-unterminated-regex",
	LexUnterminatedQw:     "lex-unterminated-qw",
	LexUnsupportedDeref:   "lex-unsupported-deref",

	SynInfo:              "syn-info",
	SynUnexpectedToken:   "syn-unexpected-token",
	SynExpectSemicolon:   "syn-expect-semicolon",
	SynExpectIdentifier:  "syn-expect-identifier",
	SynExpectVariable:    "syn-expect-variable",
	SynUnclosedParen:     "syn-unclosed-paren",
	SynUnclosedBrace:     "syn-unclosed-brace",
	SynUnclosedBracket:   "syn-unclosed-bracket",
	SynExpectBlock:       "syn-expect-block",
	SynExpectExpression:  "syn-expect-expression",
	SynBadDeclaration:    "syn-bad-declaration",
	SynBadForHeader:      "syn-bad-for-header",
	SynExpectPackageName: "syn-expect-package-name",
	SynExpectSubName:     "syn-expect-sub-name",

	SemInfo:                 "sem-info",
	SemUnresolvedIdentifier: "sem-unresolved-identifier",
	SemUnresolvedVariable:   "sem-unresolved-variable",
	SemRedeclaration:        "sem-redeclaration",
	SemUnusedVariable:       "sem-unused-variable",

	IOLoadFileError:     "io-load-file",
	IdxResourceCapFiles: "idx-resource-cap-files",
	IdxResourceCapSyms:  "idx-resource-cap-symbols",
}

func (c Code) String() string {
	if name, ok := codeNames[c]; ok {
		return name
	}
	return fmt.Sprintf("code-%04d", uint16(c))
}

// ID returns the numeric form used in editor-facing payloads (PS0000).
func (c Code) ID() string {
	return fmt.Sprintf("PS%04d", uint16(c))
}
