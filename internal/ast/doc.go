// Package ast defines the syntax tree for the perlscope engine.
//
// Trees are immutable value trees: a reparse builds a new root that may
// share unchanged subtrees with the previous root by pointer. Nothing may
// mutate a Node after the parser returns it; structural sharing across
// document versions depends on that.
//
// Node is deliberately uniform (kind + span + text + children) instead of
// one struct per kind: the incremental reparser and the workspace layer
// walk trees generically, and the closed NodeKind set keeps the semantic
// analyzer's dispatch table checkable for completeness at startup.
//
// Child layout per kind (nil marks an absent optional slot):
//
//	File         statements...
//	PackageDecl  [name Ident]
//	UseDecl      [module Ident, args...]
//	SubDecl      [name Ident, body Block]
//	VarDecl      [target, init?]          Text: "my"|"our"|"local"
//	ExprStmt     [expr, modifierCond?]     Text: ""|"if"|"unless"|"while"|"until"|"for"
//	IfStmt       [cond, then Block, else?] Text: "if"|"unless"|"elsif"; else is Block or IfStmt
//	WhileStmt    [cond, body Block]       Text: "while"|"until"
//	ForeachStmt  [var?, list, body Block] Text: "foreach"|"for"
//	CForStmt     [init?, cond?, step?, body Block]
//	ReturnStmt   [expr?, modifierCond?]    Text: ""|modifier keyword
//	LastStmt     [modifierCond?]          Text: ""|modifier keyword
//	NextStmt     [modifierCond?]          Text: ""|modifier keyword
//	Block        statements...
//	EvalBlock    [body Block]
//	BadStmt      -
//	ScalarVar/ArrayVar/HashVar  -         Text: variable with sigil
//	Ident        -                        Text: bareword
//	NumberLit/StringLit/RegexLit/QwList - Text: raw literal
//	ListExpr     elements...
//	ParenExpr    [expr]
//	CallExpr     [callee Ident, args...]
//	MethodCall   [invocant, method Ident, args...]
//	IndexExpr    [base, index]
//	KeyExpr      [base, key]
//	BinaryExpr   [lhs, rhs]               Text: operator
//	UnaryExpr    [operand]                Text: operator
//	AssignExpr   [lhs, rhs]               Text: operator
//	TernaryExpr  [cond, then, else]
//	BadExpr      -
package ast
