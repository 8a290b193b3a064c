package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/daios-ai/nucleus"
	"github.com/daios-ai/nucleus/config"
	"github.com/daios-ai/nucleus/internal/store"
)

var (
	cfgFile   string
	storePath string
	timeoutMS int

	cfg *config.Config
	st  *store.SessionStore
)

var rootCmd = &cobra.Command{
	Use:   "nucleus",
	Short: "Nucleus - stateful document analysis driven by small chained queries",
	Long: `Nucleus loads a single text document into a session and evaluates small
S-expression queries against it. Results persist across calls (RESULTS, _1..),
so an external agent can chain searches and transforms without retransmitting
the document.

Example usage:
  nucleus repl report.txt                      # interactive session
  nucleus exec -e '(count (grep "ERROR"))' report.txt
  nucleus stats report.txt`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		if cfgFile != "" {
			cfg, err = config.Load(cfgFile)
		} else {
			wd, werr := os.Getwd()
			if werr != nil {
				return werr
			}
			cfg, err = config.LoadFromDir(wd)
		}
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		setupLogging(cfg.Logging.Level)
		if storePath != "" {
			st, err = store.Open(storePath, slog.Default())
			if err != nil {
				return err
			}
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if st != nil {
			st.Close()
		}
	},
}

func setupLogging(level string) {
	lvl := slog.LevelInfo
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})))
}

func newSession() *nucleus.Session {
	return nucleus.NewSession(nucleus.Options{
		HistoryDepth:      cfg.Engine.HistoryDepth,
		MaxCandidates:     cfg.Engine.MaxCandidates,
		DefaultFuzzyLimit: cfg.Engine.DefaultFuzzyLimit,
		PreviewListCap:    cfg.Engine.PreviewListCap,
		PreviewStringCap:  cfg.Engine.PreviewStringCap,
	})
}

func loadInto(s *nucleus.Session, path string) error {
	res, err := s.LoadFile(path)
	if err != nil {
		return err
	}
	slog.Debug("loaded document", "path", path, "lines", res.LineCount, "bytes", res.Length)
	if st != nil {
		data, rerr := os.ReadFile(path)
		if rerr == nil {
			if perr := st.PutDocument(path, string(data)); perr != nil {
				slog.Warn("failed to store document", "path", path, "err", perr)
			}
		}
	}
	return nil
}

func recordTurn(s *nucleus.Session, source string, resp nucleus.Response) {
	if st == nil {
		return
	}
	rec := store.TurnRecord{Turn: resp.Turn, Source: source, Preview: resp.Preview}
	if resp.Err != nil {
		rec.ErrKind = string(resp.Err.Kind)
		rec.ErrMsg = resp.Err.Msg
	}
	if err := st.AppendTurn(s.ID, rec); err != nil {
		slog.Warn("failed to record turn", "turn", resp.Turn, "err", err)
	}
}

func execDeadline() time.Duration {
	if timeoutMS <= 0 {
		return 0
	}
	return time.Duration(timeoutMS) * time.Millisecond
}

func runTurn(s *nucleus.Session, source string) nucleus.Response {
	var resp nucleus.Response
	if d := execDeadline(); d > 0 {
		resp = s.ExecuteTimeout(source, d)
	} else {
		resp = s.Execute(source)
	}
	recordTurn(s, source, resp)
	return resp
}

// execResponse is the JSON shape the exec command prints, one line per turn.
type execResponse struct {
	OK    bool       `json:"ok"`
	Value string     `json:"value,omitempty"`
	Error *execError `json:"error,omitempty"`
	Logs  []string   `json:"logs,omitempty"`
	Turn  int        `json:"turn"`
}

type execError struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
	Line    int    `json:"line,omitempty"`
	Col     int    `json:"col,omitempty"`
}

var execExprs []string

var execCmd = &cobra.Command{
	Use:   "exec -e EXPR [-e EXPR ...] FILE",
	Short: "Execute expressions against a document, one turn per -e",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(execExprs) == 0 {
			return fmt.Errorf("at least one -e expression is required")
		}
		s := newSession()
		if err := loadInto(s, args[0]); err != nil {
			return err
		}
		enc := json.NewEncoder(os.Stdout)
		for _, src := range execExprs {
			resp := runTurn(s, src)
			out := execResponse{OK: resp.OK, Logs: resp.Logs, Turn: resp.Turn}
			if resp.OK {
				out.Value = resp.Preview
			} else {
				out.Error = &execError{
					Kind:    string(resp.Err.Kind),
					Message: resp.Err.Msg,
					Line:    resp.Err.Line,
					Col:     resp.Err.Col,
				}
			}
			if err := enc.Encode(out); err != nil {
				return err
			}
		}
		return nil
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats FILE",
	Short: "Print document statistics",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s := newSession()
		if err := loadInto(s, args[0]); err != nil {
			return err
		}
		stats, serr := s.Stats()
		if serr != nil {
			return serr
		}
		fmt.Printf("path:       %s\n", stats.Path)
		fmt.Printf("length:     %d bytes\n", stats.Length)
		fmt.Printf("line count: %d\n", stats.LineCount)
		for _, ln := range stats.SampleStart {
			fmt.Printf("  | %s\n", ln)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./nucleus.yaml)")
	rootCmd.PersistentFlags().StringVar(&storePath, "store", "", "bbolt store for documents and session transcripts")
	rootCmd.PersistentFlags().IntVar(&timeoutMS, "timeout", 0, "per-turn deadline in milliseconds (0 = none)")
	execCmd.Flags().StringArrayVarP(&execExprs, "expr", "e", nil, "expression to execute (repeatable)")
	rootCmd.AddCommand(execCmd, statsCmd, replCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
