package sema

// Perl builtin functions recognized by the analyzer. A call to one of
// these never produces an unresolved-identifier diagnostic.
var builtinFuncs = map[string]bool{
	"abs": true, "bless": true, "binmode": true, "caller": true,
	"chdir": true, "chomp": true, "chop": true, "chr": true,
	"close": true, "closedir": true, "defined": true, "delete": true,
	"die": true, "each": true, "eof": true, "exists": true,
	"exit": true, "glob": true, "gmtime": true, "grep": true,
	"hex": true, "index": true, "int": true, "join": true,
	"keys": true, "lc": true, "lcfirst": true, "length": true,
	"localtime": true, "map": true, "mkdir": true, "oct": true,
	"open": true, "opendir": true, "ord": true, "pop": true,
	"print": true, "printf": true, "push": true, "rand": true,
	"read": true, "readdir": true, "readline": true, "ref": true,
	"rename": true, "require": true, "reverse": true, "rindex": true,
	"rmdir": true, "say": true, "scalar": true, "shift": true,
	"sleep": true, "sort": true, "splice": true, "split": true,
	"sprintf": true, "sqrt": true, "srand": true, "stat": true,
	"substr": true, "time": true, "uc": true, "ucfirst": true,
	"undef": true, "unlink": true, "unshift": true, "values": true,
	"wantarray": true, "warn": true, "wait": true,
}

// Predeclared variables, including the numbered capture groups the lexer
// produces as single tokens.
var builtinVars = map[string]bool{
	"$_": true, "@_": true, "$0": true,
	"$1": true, "$2": true, "$3": true, "$4": true, "$5": true,
	"$6": true, "$7": true, "$8": true, "$9": true,
	"@ARGV": true, "$ARGV": true, "@INC": true, "%INC": true,
	"%ENV": true, "%SIG": true, "$a": true, "$b": true,
}

// IsBuiltinFunc reports whether name is a recognized builtin function.
func IsBuiltinFunc(name string) bool { return builtinFuncs[name] }

// IsBuiltinVar reports whether name (with sigil) is predeclared.
func IsBuiltinVar(name string) bool { return builtinVars[name] }
