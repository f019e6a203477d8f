package lsp

import (
	"testing"

	"github.com/leapstack-labs/payjar/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeDiagnostics_Clean(t *testing.T) {
	diags, fixes := computeDiagnostics(newDoc(sampleProgram))
	assert.Empty(t, diags)
	assert.Empty(t, fixes)
}

func TestComputeDiagnostics_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		code    string
		message string
		rng     Range
	}{
		{
			name:    "missing semicolon",
			content: testutil.Program("println(1)\nprintln(2);"),
			code:    CodeMissingSemicolon,
			message: "Syntax Error: Expected SEMICOLON, but got PRINTLN. Index: 13",
			rng:     Range{Start: Position{Line: 2, Character: 0}, End: Position{Line: 2, Character: 7}},
		},
		{
			name:    "invalid character",
			content: testutil.Program("let x = 1 # 2;"),
			code:    CodeLexerError,
			message: "Lexer Error: Invalid character: #",
			rng:     Range{Start: Position{Line: 1, Character: 10}, End: Position{Line: 1, Character: 11}},
		},
		{
			name:    "bad header",
			content: "public class main",
			code:    CodeSyntaxError,
			message: "Syntax Error: Expected IDENTIFIER, but got MAIN. Index: 2",
			rng:     Range{Start: Position{Line: 0, Character: 13}, End: Position{Line: 0, Character: 17}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			diags, _ := computeDiagnostics(newDoc(tt.content))
			require.Len(t, diags, 1)
			assert.Equal(t, tt.code, diags[0].Code)
			assert.Equal(t, tt.message, diags[0].Message)
			assert.Equal(t, tt.rng, diags[0].Range)
			assert.Equal(t, DiagnosticSeverityError, diags[0].Severity)
			assert.Equal(t, "payjar", diags[0].Source)
		})
	}
}

func TestComputeDiagnostics_UnexpectedEnd(t *testing.T) {
	doc := newDoc("public class A main(@self) {\n  pass;")
	diags, _ := computeDiagnostics(doc)

	require.Len(t, diags, 1)
	assert.Equal(t, CodeSyntaxError, diags[0].Code)
	end := doc.OffsetToPosition(len(doc.Content))
	assert.Equal(t, Range{Start: end, End: end}, diags[0].Range)
}

func TestComputeDiagnostics_MissingSemicolonFix(t *testing.T) {
	_, fixes := computeDiagnostics(newDoc(testutil.Program("println(1)\nprintln(2);")))

	require.Len(t, fixes[CodeMissingSemicolon], 1)
	fix := fixes[CodeMissingSemicolon][0]
	assert.Equal(t, "Insert missing ';'", fix.Title)
	at := Position{Line: 1, Character: 10}
	assert.Equal(t, []TextEdit{{Range: Range{Start: at, End: at}, NewText: ";"}}, fix.Edits)
}

func TestComputeDiagnostics_Warnings(t *testing.T) {
	content := testutil.Program(`return 1;
func f() { return 2; }
println(missing(1));
var p = NEW Ghost();
f();`)

	diags, _ := computeDiagnostics(newDoc(content))
	require.Len(t, diags, 3)

	assert.Equal(t, CodeTopLevelReturn, diags[0].Code)
	assert.Equal(t, "'return' outside of a function was ignored", diags[0].Message)
	assert.Equal(t, Range{Start: Position{Line: 1, Character: 0}, End: Position{Line: 1, Character: 6}}, diags[0].Range)

	assert.Equal(t, CodeUndefinedFunc, diags[1].Code)
	assert.Equal(t, "Function 'missing' is not defined in this program", diags[1].Message)
	assert.Equal(t, uint32(3), diags[1].Range.Start.Line)

	assert.Equal(t, CodeUndefinedClass, diags[2].Code)
	assert.Equal(t, "Class 'Ghost' is not defined in this program", diags[2].Message)

	for _, d := range diags {
		assert.Equal(t, DiagnosticSeverityWarning, d.Severity)
	}
}
