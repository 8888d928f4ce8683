package fuzztests

import "testing"

const maxFuzzInput = 1 << 16 // 64 KiB

var languageSeeds = []string{
	"",
	"my $x = 1;\nprint $x;\n",
	"package Util;\n\nsub helper {\n    my $n = shift;\n    return $n * 2;\n}\n\n1;\n",
	"use strict;\nuse warnings;\nuse Util;\n\nmy $v = Util::helper(21);\n",
	"my @items = (1, 2, 3);\nforeach my $it (@items) {\n    print $it;\n}\n",
	"my %seen;\nfor (my $i = 0; $i < 10; $i++) {\n    $seen{$i} = 1;\n}\n",
	"my $half = 10 / 2;\nif ($line =~ /^\\s*#/) { next; }\n",
	"our $VERSION = '1.02';\nlocal $_ = 'tmp';\n",
	"sub outer {\n    my $x = 1;\n    if ($x) {\n        my $x = 2;\n        return $x;\n    }\n    return $x;\n}\n",
	"print \"total: $count\\n\" unless $quiet;\n",
	"eval {\n    risky();\n};\nwarn $@ if $@;\n",
	"my $obj = Thing->new;\n$obj->run(1, 2);\n",
	"my ($a, $b) = @_;\nreturn $a <=> $b;\n",
	"while (<$fh>) {\n    chomp;\n    last if /^END/;\n}\n",
	"my $s = 'unterminated\n",
	"sub broken {\n    my $x = ;\n}\n",
	"if ($x { print; }\n",
}

// edge cases that previously tripped error recovery
var recoverySeeds = []string{
	"my $x = 1\nmy $y = 2;\n",          // missing semicolon
	"{ { { { } } } }\n",                // deeply nested bare blocks
	"foreach my $x () {}\n",            // empty list
	"for (my $i = 0 $i < 3 $i++) {}\n", // for without semicolons
	"sub f { return } sub g { }\n",     // return without expression
	"$x =~\n",                          // dangling match operator
}

func addCorpusSeeds(f *testing.F) {
	for _, s := range languageSeeds {
		f.Add([]byte(s))
	}
	for _, s := range recoverySeeds {
		f.Add([]byte(s))
	}
}

func clampInput(src []byte) []byte {
	if len(src) > maxFuzzInput {
		src = src[:maxFuzzInput]
	}
	return append([]byte(nil), src...)
}
