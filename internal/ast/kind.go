package ast

// NodeKind is the closed set of syntax tree node variants. The semantic
// analyzer keeps one handler per kind and verifies completeness at
// startup, so adding a kind here without a handler fails fast.
type NodeKind uint8

const (
	KindInvalid NodeKind = iota
	KindFile

	// Statements
	KindPackageDecl
	KindUseDecl
	KindSubDecl
	KindVarDecl
	KindExprStmt
	KindIfStmt
	KindWhileStmt
	KindForeachStmt
	KindCForStmt
	KindReturnStmt
	KindLastStmt
	KindNextStmt
	KindBlock
	KindEvalBlock
	KindBadStmt

	// Expressions
	KindScalarVar
	KindArrayVar
	KindHashVar
	KindIdent
	KindNumberLit
	KindStringLit
	KindRegexLit
	KindQwList
	KindListExpr
	KindParenExpr
	KindCallExpr
	KindMethodCall
	KindIndexExpr
	KindKeyExpr
	KindBinaryExpr
	KindUnaryExpr
	KindAssignExpr
	KindTernaryExpr
	KindBadExpr

	// kindCount is the number of valid kinds; keep it last.
	kindCount
)

// KindCount returns the number of node kinds including KindInvalid.
func KindCount() int { return int(kindCount) }

var kindNames = [...]string{
	KindInvalid:     "Invalid",
	KindFile:        "File",
	KindPackageDecl: "PackageDecl",
	KindUseDecl:     "UseDecl",
	KindSubDecl:     "SubDecl",
	KindVarDecl:     "VarDecl",
	KindExprStmt:    "ExprStmt",
	KindIfStmt:      "IfStmt",
	KindWhileStmt:   "WhileStmt",
	KindForeachStmt: "ForeachStmt",
	KindCForStmt:    "CForStmt",
	KindReturnStmt:  "ReturnStmt",
	KindLastStmt:    "LastStmt",
	KindNextStmt:    "NextStmt",
	KindBlock:       "Block",
	KindEvalBlock:   "EvalBlock",
	KindBadStmt:     "BadStmt",
	KindScalarVar:   "ScalarVar",
	KindArrayVar:    "ArrayVar",
	KindHashVar:     "HashVar",
	KindIdent:       "Ident",
	KindNumberLit:   "NumberLit",
	KindStringLit:   "StringLit",
	KindRegexLit:    "RegexLit",
	KindQwList:      "QwList",
	KindListExpr:    "ListExpr",
	KindParenExpr:   "ParenExpr",
	KindCallExpr:    "CallExpr",
	KindMethodCall:  "MethodCall",
	KindIndexExpr:   "IndexExpr",
	KindKeyExpr:     "KeyExpr",
	KindBinaryExpr:  "BinaryExpr",
	KindUnaryExpr:   "UnaryExpr",
	KindAssignExpr:  "AssignExpr",
	KindTernaryExpr: "TernaryExpr",
	KindBadExpr:     "BadExpr",
}

func (k NodeKind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "Unknown"
}

// IsStatement reports whether the kind is a statement-level construct.
func (k NodeKind) IsStatement() bool {
	switch k {
	case KindPackageDecl, KindUseDecl, KindSubDecl, KindVarDecl, KindExprStmt,
		KindIfStmt, KindWhileStmt, KindForeachStmt, KindCForStmt,
		KindReturnStmt, KindLastStmt, KindNextStmt, KindBlock, KindEvalBlock,
		KindBadStmt:
		return true
	default:
		return false
	}
}

// IsExpression reports whether the kind is an expression-level construct.
func (k NodeKind) IsExpression() bool {
	switch k {
	case KindScalarVar, KindArrayVar, KindHashVar, KindIdent, KindNumberLit,
		KindStringLit, KindRegexLit, KindQwList, KindListExpr, KindParenExpr,
		KindCallExpr, KindMethodCall, KindIndexExpr, KindKeyExpr,
		KindBinaryExpr, KindUnaryExpr, KindAssignExpr, KindTernaryExpr,
		KindBadExpr:
		return true
	default:
		return false
	}
}
