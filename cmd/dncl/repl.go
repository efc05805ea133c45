package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"

	"dncl-lang/internal/parser"
	"dncl-lang/internal/runtime"
)

// ---- repl command ----

func cmdRepl() {
	// Determine history file path (~/.dncl_history)
	historyFile := ""
	if home, err := os.UserHomeDir(); err == nil {
		historyFile = filepath.Join(home, ".dncl_history")
	}

	mainPrompt := promptStyle.Render(">>> ")
	contPrompt := contStyle.Render("... ")

	rl, err := readline.NewEx(&readline.Config{
		Prompt:            mainPrompt,
		HistoryFile:       historyFile,
		InterruptPrompt:   "^C",
		EOFPrompt:         "exit",
		HistorySearchFold: true,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "readline init failed: %v\n", err)
		os.Exit(1)
	}
	defer rl.Close()

	fmt.Fprintln(rl.Stdout(), headerStyle.Render("DNCL インタプリタ (共通テスト手順記述標準言語)"))
	fmt.Fprintln(rl.Stdout(), hintStyle.Render("終了するには 'exit' または Ctrl+D を入力してください"))
	fmt.Fprintln(rl.Stdout())

	interp := runtime.NewInterpreter(rl.Stdout())

	// 【外部からの入力】 reads through readline with its own prompt so it
	// does not fight the REPL over stdin.
	interp.SetInput(func() (string, error) {
		rl.SetPrompt(contStyle.Render("入力: "))
		defer rl.SetPrompt(mainPrompt)
		return rl.Readline()
	})

	var accumulated strings.Builder

	for {
		if accumulated.Len() > 0 {
			rl.SetPrompt(contPrompt)
		} else {
			rl.SetPrompt(mainPrompt)
		}

		line, err := rl.Readline()
		if err != nil {
			if err == readline.ErrInterrupt {
				if accumulated.Len() > 0 {
					// Cancel multi-line input
					accumulated.Reset()
					continue
				}
				fmt.Fprintln(rl.Stdout(), hintStyle.Render("(終了するには 'exit' または Ctrl+D)"))
				continue
			}
			if err == io.EOF {
				fmt.Fprintln(rl.Stdout())
			}
			break
		}

		if accumulated.Len() == 0 {
			trimmed := strings.TrimSpace(line)
			if trimmed == "exit" || trimmed == "quit" {
				break
			}
			if trimmed == "" {
				continue
			}
		}

		accumulated.WriteString(line)
		accumulated.WriteString("\n")

		// Keep reading while the buffer looks like an open construct.
		if !isCompleteInput(accumulated.String()) {
			continue
		}

		source := accumulated.String()
		accumulated.Reset()

		program, err := parser.ParseSource(source, "<repl>")
		if err != nil {
			printReplError(rl.Stderr(), err)
			continue
		}
		if err := interp.Run(program); err != nil {
			printReplError(rl.Stderr(), err)
			continue
		}
	}
}

// isCompleteInput reports whether the accumulated input looks like a
// finished statement sequence. This is a line-shape heuristic, not a
// parse: it only decides when to stop prompting for continuation lines.
func isCompleteInput(source string) bool {
	src := strings.TrimSpace(source)

	if strings.HasPrefix(src, "もし") && !strings.Contains(src, "を実行する") {
		return false
	}
	if strings.HasPrefix(src, "繰り返し") && !strings.Contains(src, "になるまで実行する") {
		return false
	}
	if strings.Contains(src, "の間") && !strings.Contains(src, "を繰り返す") {
		return false
	}
	if strings.Contains(src, "から") && strings.Contains(src, "まで") &&
		!strings.Contains(src, "を繰り返す") {
		return false
	}
	if strings.HasPrefix(src, "関数") && !strings.Contains(src, "と定義する") {
		return false
	}
	return true
}

func printReplError(w io.Writer, err error) {
	fmt.Fprintln(w, errStyle.Render(err.Error()))
}
