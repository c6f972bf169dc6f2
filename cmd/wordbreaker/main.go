package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/url"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"strings"
	"syscall"
	"time"

	"github.com/japaniel/wordbreaker/pkg/config"
	"github.com/japaniel/wordbreaker/pkg/corpus"
	"github.com/japaniel/wordbreaker/pkg/db"
	"github.com/japaniel/wordbreaker/pkg/learn"
	"github.com/japaniel/wordbreaker/pkg/report"
	"github.com/spf13/cobra"
)

func main() {
	// Setup context for graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "wordbreaker",
		Short:        "Unsupervised word segmentation by minimum description length",
		SilenceUsage: true,
	}
	rootCmd.AddCommand(runCmd())
	rootCmd.AddCommand(extractCmd())
	return rootCmd
}

type runOptions struct {
	cli        config.Config
	configPath string
	workers    int
	dbPath     string
	gold       string
	maxLines   int
}

func runCmd() *cobra.Command {
	var opts runOptions
	var verbose bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Learn a lexicon from a corpus and score it against the corpus spacing",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("verbose") {
				opts.cli.Verbose = &verbose
			}
			return runLearner(cmd.Context(), cmd, opts)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.cli.Language, "language", "", "language name (subdirectory of the data folder)")
	f.StringVar(&opts.cli.Corpus, "corpus", "", "corpus filename")
	f.StringVar(&opts.cli.Datafolder, "datafolder", "", "data folder path")
	f.StringVar(&opts.configPath, "config", "config.json", "configuration file")
	f.IntVar(&opts.cli.Cycles, "cycles", 0, fmt.Sprintf("number of learning cycles (default %d)", config.DefaultCycles))
	f.IntVar(&opts.cli.Candidates, "candidates", 0, fmt.Sprintf("candidates admitted per cycle (default %d)", config.DefaultCandidates))
	f.BoolVar(&verbose, "verbose", false, "write the parse trace to the log file")
	f.IntVar(&opts.workers, "workers", runtime.NumCPU(), "parallel parsers per cycle")
	f.StringVar(&opts.dbPath, "db", "", "SQLite database to record the run in")
	f.StringVar(&opts.gold, "gold", "whitespace", "gold tokenizer: whitespace or kagome")
	f.IntVar(&opts.maxLines, "max-lines", 0, "read at most this many corpus lines (0 = all)")
	return cmd
}

func goldTokenizer(name string) (corpus.Tokenizer, error) {
	switch name {
	case "", "whitespace":
		return corpus.Whitespace{}, nil
	case "kagome":
		return corpus.NewKagome()
	}
	return nil, fmt.Errorf("unknown gold tokenizer %q", name)
}

func runLearner(ctx context.Context, cmd *cobra.Command, opts runOptions) error {
	out := cmd.OutOrStdout()
	resolver := &config.Resolver{ConfigPath: opts.configPath, In: cmd.InOrStdin(), Out: out}
	cfg, err := resolver.Resolve(opts.cli)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Language: %s\nCorpus: %s\nDatafolder: %s\n", cfg.Language, cfg.Corpus, cfg.Datafolder)

	tok, err := goldTokenizer(opts.gold)
	if err != nil {
		return err
	}
	c, err := corpus.Load(cfg.CorpusPath(), corpus.Options{Tokenizer: tok, MaxLines: opts.maxLines})
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Loaded %d lines, %d running words, %d distinct words.\n", c.Len(), c.RunningWords, len(c.Gold))

	paths := report.OutputPaths(cfg.Datafolder, cfg.Language, cfg.Corpus, cfg.Cycles)
	if err := os.MkdirAll(paths.Dir, 0755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	logFile, err := os.Create(paths.Log)
	if err != nil {
		return err
	}
	defer logFile.Close()

	if err := report.WriteHeader(logFile, report.Header{
		Corpus:        cfg.Corpus,
		Cycles:        cfg.Cycles,
		Lines:         c.Len(),
		Candidates:    cfg.Candidates,
		DistinctWords: len(c.Gold),
	}); err != nil {
		return err
	}

	l := learn.NewLearner(c)
	l.Cycles = cfg.Cycles
	l.Candidates = cfg.Candidates
	l.Workers = opts.workers
	l.Logger = log.New(io.MultiWriter(cmd.ErrOrStderr(), logFile), "", log.LstdFlags)
	if cfg.Trace() {
		l.Trace = logFile
	}
	var writeErr error
	l.OnCycle = func(r learn.CycleResult) {
		if writeErr == nil {
			writeErr = report.WriteCycle(logFile, r)
		}
	}

	var rec *db.Recorder
	var runID string
	if opts.dbPath != "" {
		conn, err := db.Open(opts.dbPath)
		if err != nil {
			return err
		}
		defer conn.Close()
		runID, err = db.CreateRun(conn, db.Run{
			Language:   cfg.Language,
			Corpus:     cfg.Corpus,
			Lines:      c.Len(),
			Cycles:     cfg.Cycles,
			Candidates: cfg.Candidates,
		})
		if err != nil {
			return err
		}
		rec = db.NewRecorder(conn, runID)
		l.Recorder = rec
		fmt.Fprintf(out, "Recording run %s in %s\n", runID, opts.dbPath)
	}

	start := time.Now()
	runErr := l.Run(ctx)
	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		if rec != nil {
			rec.Close()
		}
		return runErr
	}
	if runErr != nil {
		fmt.Fprintf(out, "Interrupted, writing results of the last completed cycle.\n")
	}
	if writeErr != nil {
		return fmt.Errorf("write log: %w", writeErr)
	}

	if rec != nil {
		if err := rec.Finish(l.Lexicon()); err != nil {
			return fmt.Errorf("record run: %w", err)
		}
	}
	if err := writeOutputs(paths, cfg, runID, l); err != nil {
		return err
	}

	h := l.History()
	if len(h) > 0 {
		final := h[len(h)-1]
		fmt.Fprintf(out, "Processing complete in %v. Cycle %d: %d entries, total cost %s.\n",
			time.Since(start).Round(time.Millisecond), final.Cycle, final.Entries, report.FormatCount(final.TotalLength()))
		fmt.Fprintf(out, "Break precision %.4f recall %.4f\n", final.Break.Precision, final.Break.Recall)
	}
	fmt.Fprintf(out, "Results written to %s\n", paths.Dir)
	return runErr
}

func writeOutputs(paths report.Paths, cfg config.Config, runID string, l *learn.Learner) error {
	write := func(path string, fn func(io.Writer) error) error {
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		if err := fn(f); err != nil {
			f.Close()
			return fmt.Errorf("write %s: %w", filepath.Base(path), err)
		}
		return f.Close()
	}

	if err := write(paths.Corpus, func(w io.Writer) error { return report.WriteParsedCorpus(w, l.Parsed()) }); err != nil {
		return err
	}
	if err := write(paths.Lexicon, func(w io.Writer) error { return report.WriteLexicon(w, l.Lexicon()) }); err != nil {
		return err
	}
	if err := write(paths.RecallPrecision, func(w io.Writer) error { return report.WriteRecallPrecision(w, l.History()) }); err != nil {
		return err
	}
	summary := report.NewSummary(l, 50)
	summary.RunID = runID
	summary.Language = cfg.Language
	summary.Corpus = cfg.Corpus
	return write(paths.Summary, func(w io.Writer) error { return report.WriteSummary(w, summary) })
}

func extractCmd() *cobra.Command {
	var outPath string

	cmd := &cobra.Command{
		Use:   "extract [file or URL]",
		Short: "Extract readable text from an HTML page into a one-sentence-per-line corpus",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src := args[0]
			var body []byte
			var pageURL *url.URL
			var err error
			if strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "https://") {
				fmt.Fprintf(cmd.ErrOrStderr(), "Fetching %s...\n", src)
				body, err = corpus.Fetch(cmd.Context(), src)
				pageURL, _ = url.Parse(src)
			} else {
				body, err = os.ReadFile(src)
			}
			if err != nil {
				return err
			}

			article, err := corpus.ExtractHTML(body, pageURL)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if outPath != "" {
				f, err := os.Create(outPath)
				if err != nil {
					return err
				}
				defer f.Close()
				w = f
			}
			if err := article.WriteLines(w); err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Title: %s\nExtracted %d sentences.\n", article.Title, len(article.Sentences))
			return nil
		},
	}
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "output corpus file (default stdout)")
	return cmd
}
