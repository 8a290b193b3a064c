package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/peterh/liner"
	"github.com/spf13/cobra"

	"github.com/daios-ai/nucleus"
)

const (
	historyFile = ".nucleus_history"
	promptMain  = "==> "
)

func red(s string) string   { return "\x1b[31m" + s + "\x1b[0m" }
func green(s string) string { return "\x1b[32m" + s + "\x1b[0m" }
func blue(s string) string  { return "\x1b[94m" + s + "\x1b[0m" }

const replHelp = `REPL commands:
  :help            Show this help
  :bindings        Show the current binding snapshot
  :reset           Clear bindings and the turn counter (document kept)
  :load PATH       Load a document from disk
  :restore LABEL   Load a document from the --store database
  :docs            List documents in the --store database
  :quit            Exit

Anything else is executed as one Nucleus turn.`

var replCmd = &cobra.Command{
	Use:   "repl [FILE]",
	Short: "Interactive session (one turn per line)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s := newSession()
		if len(args) == 1 {
			if err := loadInto(s, args[0]); err != nil {
				return err
			}
		}

		line := liner.NewLiner()
		defer line.Close()
		line.SetCtrlCAborts(true)

		histPath := filepath.Join(os.TempDir(), historyFile)
		if home, err := os.UserHomeDir(); err == nil {
			histPath = filepath.Join(home, historyFile)
		}
		if f, err := os.Open(histPath); err == nil {
			line.ReadHistory(f)
			f.Close()
		}
		defer func() {
			if f, err := os.Create(histPath); err == nil {
				line.WriteHistory(f)
				f.Close()
			}
		}()

		fmt.Println("Nucleus REPL. Ctrl+C cancels input, Ctrl+D exits. Type :help for commands.")
		for {
			src, err := line.Prompt(promptMain)
			if errors.Is(err, liner.ErrPromptAborted) {
				continue
			}
			if errors.Is(err, io.EOF) {
				fmt.Println()
				return nil
			}
			if err != nil {
				return err
			}
			src = strings.TrimSpace(src)
			if src == "" {
				continue
			}
			line.AppendHistory(src)
			if strings.HasPrefix(src, ":") {
				if quit := replCommand(s, src); quit {
					return nil
				}
				continue
			}
			printResponse(src, runTurn(s, src))
		}
	},
}

func replCommand(s *nucleus.Session, src string) (quit bool) {
	cmd, rest, _ := strings.Cut(src, " ")
	rest = strings.TrimSpace(rest)
	switch cmd {
	case ":quit", ":q":
		return true
	case ":help":
		fmt.Println(replHelp)
	case ":bindings":
		b := s.Bindings()
		names := make([]string, 0, len(b))
		for n := range b {
			names = append(names, n)
		}
		sort.Strings(names)
		for _, n := range names {
			fmt.Printf("  %-10s %s\n", n, b[n])
		}
	case ":reset":
		s.Reset()
		fmt.Println("bindings cleared")
	case ":load":
		if rest == "" {
			fmt.Println(red("usage: :load PATH"))
			return false
		}
		if err := loadInto(s, rest); err != nil {
			fmt.Println(red(err.Error()))
		} else {
			fmt.Println(green("loaded " + rest))
		}
	case ":restore":
		if st == nil {
			fmt.Println(red("no --store database configured"))
			return false
		}
		if rest == "" {
			fmt.Println(red("usage: :restore LABEL"))
			return false
		}
		text, err := st.GetDocument(rest)
		if err != nil {
			fmt.Println(red(err.Error()))
			return false
		}
		res := s.LoadText(text, rest)
		fmt.Println(green(fmt.Sprintf("restored %s (%d lines)", rest, res.LineCount)))
	case ":docs":
		if st == nil {
			fmt.Println(red("no --store database configured"))
			return false
		}
		labels, err := st.Documents()
		if err != nil {
			fmt.Println(red(err.Error()))
			return false
		}
		for _, l := range labels {
			fmt.Println("  " + l)
		}
	default:
		fmt.Println(red("unknown command " + cmd + " (try :help)"))
	}
	return false
}

func printResponse(src string, resp nucleus.Response) {
	for _, lg := range resp.Logs {
		fmt.Println(green("; " + lg))
	}
	if resp.Err != nil {
		fmt.Print(red(nucleus.RenderError(resp.Err, src)))
		return
	}
	fmt.Println(blue(resp.Preview))
}
