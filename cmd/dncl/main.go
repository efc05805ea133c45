// Command dncl is the CLI entry point for the DNCL interpreter.
//
// Usage:
//
//	dncl tokens <file>             Print tokens
//	dncl tokens <file> --json      Print tokens as JSON
//	dncl parse  <file>             Print AST as JSON
//	dncl run    <file>             Run a source file
//	dncl run    <file> --verbose   Run with token and AST trace
//	dncl repl                      Start interactive REPL
package main

import (
	"fmt"
	"os"

	"dncl-lang/internal/ast"
	"dncl-lang/internal/lexer"
	"dncl-lang/internal/parser"
	"dncl-lang/internal/runtime"
	"dncl-lang/internal/token"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	command := os.Args[1]

	switch command {
	case "tokens":
		if len(os.Args) < 3 {
			fmt.Fprintln(os.Stderr, "error: missing file argument")
			os.Exit(1)
		}
		source := readFile(os.Args[2])
		cmdTokens(source, os.Args[2], hasFlag("--json"))
	case "parse":
		if len(os.Args) < 3 {
			fmt.Fprintln(os.Stderr, "error: missing file argument")
			os.Exit(1)
		}
		source := readFile(os.Args[2])
		cmdParse(source, os.Args[2])
	case "run":
		if len(os.Args) < 3 {
			fmt.Fprintln(os.Stderr, "error: missing file argument")
			os.Exit(1)
		}
		source := readFile(os.Args[2])
		cmdRun(source, os.Args[2], hasFlag("--verbose") || hasFlag("-v"))
	case "repl":
		cmdRepl()
	default:
		fmt.Fprintf(os.Stderr, "error: unknown command '%s'\n", command)
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "Usage:")
	fmt.Fprintln(os.Stderr, "  dncl tokens <file> [--json]      Tokenize and print tokens")
	fmt.Fprintln(os.Stderr, "  dncl parse  <file>               Parse and print AST (JSON)")
	fmt.Fprintln(os.Stderr, "  dncl run    <file> [--verbose]   Run a source file")
	fmt.Fprintln(os.Stderr, "  dncl repl                        Start interactive REPL")
}

func readFile(filename string) string {
	source, err := os.ReadFile(filename)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: cannot read file %s: %v\n", filename, err)
		os.Exit(1)
	}
	return string(source)
}

func hasFlag(flag string) bool {
	for _, arg := range os.Args[3:] {
		if arg == flag {
			return true
		}
	}
	return false
}

// ---- tokens command ----

func cmdTokens(source, filename string, jsonMode bool) {
	l := lexer.New(source, filename)
	tokens, err := l.Tokenize()

	if jsonMode {
		printTokensJSON(tokens, err)
	} else {
		printTokensText(tokens)
		if err != nil {
			printError(err)
		}
	}

	if err != nil {
		os.Exit(1)
	}
}

// ---- parse command ----

func cmdParse(source, filename string) {
	program, err := parser.ParseSource(source, filename)
	if err != nil {
		printJSON(map[string]interface{}{"error": errorToMap(err)})
		os.Exit(1)
	}
	printJSON(map[string]interface{}{"ast": ast.NodeToMap(program)})
}

// ---- run command ----

func cmdRun(source, filename string, verbose bool) {
	l := lexer.New(source, filename)
	tokens, err := l.Tokenize()
	if err != nil {
		printError(err)
		os.Exit(1)
	}

	if verbose {
		fmt.Println(headerStyle.Render("=== トークン ==="))
		for _, tok := range tokens {
			if tok.Kind == token.NEWLINE || tok.Kind == token.EOF {
				continue
			}
			fmt.Printf("  %s\n", tok)
		}
		fmt.Println()
	}

	program, err := parser.New(tokens).Parse()
	if err != nil {
		printError(err)
		os.Exit(1)
	}

	if verbose {
		fmt.Println(headerStyle.Render("=== AST ==="))
		printJSON(ast.NodeToMap(program))
		fmt.Println(headerStyle.Render("=== 実行結果 ==="))
	}

	interp := runtime.NewInterpreter(os.Stdout)
	if err := interp.Run(program); err != nil {
		printError(err)
		os.Exit(1)
	}
}
