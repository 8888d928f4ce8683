package token

// Kind represents the category of a source token.
type Kind uint8

const (
	// Invalid indicates an erroneous token.
	Invalid Kind = iota
	// EOF marks the end of the source input.
	EOF

	// Ident represents a bareword identifier, possibly package-qualified (Foo::bar).
	Ident
	// ScalarVar represents a scalar variable including its sigil ($x).
	ScalarVar
	// ArrayVar represents an array variable including its sigil (@x).
	ArrayVar
	// HashVar represents a hash variable including its sigil (%x).
	HashVar

	// NumberLit represents an integer or floating-point literal.
	NumberLit
	// StringLit represents a single- or double-quoted string literal.
	StringLit
	// RegexLit represents a /.../ regex literal (contextually lexed).
	RegexLit
	// QwList represents a qw(...) word list literal.
	QwList

	// KwMy represents the 'my' keyword.
	KwMy // my
	// KwOur represents the 'our' keyword.
	KwOur // our
	// KwLocal represents the 'local' keyword.
	KwLocal // local
	// KwSub represents the 'sub' keyword.
	KwSub // sub
	// KwPackage represents the 'package' keyword.
	KwPackage // package
	// KwUse represents the 'use' keyword.
	KwUse // use
	// KwNo represents the 'no' keyword.
	KwNo // no
	// KwIf represents the 'if' keyword.
	KwIf // if
	// KwElsif represents the 'elsif' keyword.
	KwElsif // elsif
	// KwElse represents the 'else' keyword.
	KwElse // else
	// KwUnless represents the 'unless' keyword.
	KwUnless // unless
	// KwWhile represents the 'while' keyword.
	KwWhile // while
	// KwUntil represents the 'until' keyword.
	KwUntil // until
	// KwFor represents the 'for' keyword.
	KwFor // for
	// KwForeach represents the 'foreach' keyword.
	KwForeach // foreach
	// KwReturn represents the 'return' keyword.
	KwReturn // return
	// KwLast represents the 'last' keyword.
	KwLast // last
	// KwNext represents the 'next' keyword.
	KwNext // next
	// KwEval represents the 'eval' keyword.
	KwEval // eval
	// KwDo represents the 'do' keyword.
	KwDo // do
	// KwAnd represents the low-precedence 'and' operator.
	KwAnd // and
	// KwOr represents the low-precedence 'or' operator.
	KwOr // or
	// KwNot represents the low-precedence 'not' operator.
	KwNot // not

	// StrEq..StrCmp are the string comparison word operators.
	StrEq  // eq
	StrNe  // ne
	StrLt  // lt
	StrGt  // gt
	StrLe  // le
	StrGe  // ge
	StrCmp // cmp
	// Repeat represents the 'x' repetition operator.
	Repeat // x

	Plus        // +
	Minus       // -
	Star        // *
	Slash       // /
	Percent     // %
	StarStar    // **
	Dot         // .
	DotDot      // ..
	Assign      // =
	PlusAssign  // +=
	MinusAssign // -=
	StarAssign  // *=
	SlashAssign // /=
	DotAssign   // .=
	OrOrAssign  // ||=
	DefOrAssign // //=
	EqEq        // ==
	BangEq      // !=
	Spaceship   // <=>
	Lt          // <
	Gt          // >
	LtEq        // <=
	GtEq        // >=
	AndAnd      // &&
	OrOr        // ||
	DefOr       // //
	Bang        // !
	Question    // ?
	Colon       // :
	Semicolon   // ;
	Comma       // ,
	FatArrow    // =>
	Arrow       // ->
	Match       // =~
	NotMatch    // !~
	PlusPlus    // ++
	MinusMinus  // --
	Backslash   // \
	Amp         // &
	LParen      // (
	RParen      // )
	LBrace      // {
	RBrace      // }
	LBracket    // [
	RBracket    // ]
)

var kindNames = map[Kind]string{
	Invalid: "invalid", EOF: "eof",
	Ident: "ident", ScalarVar: "scalar-var", ArrayVar: "array-var", HashVar: "hash-var",
	NumberLit: "number", StringLit: "string", RegexLit: "regex", QwList: "qw",
	KwMy: "my", KwOur: "our", KwLocal: "local", KwSub: "sub", KwPackage: "package",
	KwUse: "use", KwNo: "no", KwIf: "if", KwElsif: "elsif", KwElse: "else",
	KwUnless: "unless", KwWhile: "while", KwUntil: "until", KwFor: "for",
	KwForeach: "foreach", KwReturn: "return", KwLast: "last", KwNext: "next",
	KwEval: "eval", KwDo: "do", KwAnd: "and", KwOr: "or", KwNot: "not",
	StrEq: "eq", StrNe: "ne", StrLt: "lt", StrGt: "gt", StrLe: "le", StrGe: "ge",
	StrCmp: "cmp", Repeat: "x",
	Plus: "+", Minus: "-", Star: "*", Slash: "/", Percent: "%", StarStar: "**",
	Dot: ".", DotDot: "..", Assign: "=", PlusAssign: "+=", MinusAssign: "-=",
	StarAssign: "*=", SlashAssign: "/=", DotAssign: ".=", OrOrAssign: "||=",
	DefOrAssign: "//=", EqEq: "==", BangEq: "!=", Spaceship: "<=>", Lt: "<",
	Gt: ">", LtEq: "<=", GtEq: ">=", AndAnd: "&&", OrOr: "||", DefOr: "//",
	Bang: "!", Question: "?", Colon: ":", Semicolon: ";", Comma: ",",
	FatArrow: "=>", Arrow: "->", Match: "=~", NotMatch: "!~", PlusPlus: "++",
	MinusMinus: "--", Backslash: "\\", Amp: "&",
	LParen: "(", RParen: ")", LBrace: "{", RBrace: "}", LBracket: "[", RBracket: "]",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}
