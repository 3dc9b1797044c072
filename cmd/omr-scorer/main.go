package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/ironsheep/omr-scorer/internal/answerkey"
	"github.com/ironsheep/omr-scorer/internal/config"
	"github.com/ironsheep/omr-scorer/internal/ledger"
	"github.com/ironsheep/omr-scorer/internal/omr"
	"github.com/ironsheep/omr-scorer/internal/server"
	"golang.org/x/sync/errgroup"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func usage() {
	fmt.Println("omr-scorer - bubble-sheet scoring as an MCP server and CLI")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  omr-scorer [-config omr.yaml]                 Run the MCP server on stdin/stdout")
	fmt.Println("  omr-scorer [-config f] score -key SET [-student NAME -roll N] [-csv FILE] IMAGE")
	fmt.Println("  omr-scorer [-config f] batch -key SET [-workers N] IMAGE...")
	fmt.Println("  omr-scorer [-config f] key -set SET -file BLOCK.txt")
	fmt.Println()
	fmt.Println("Options:")
	fmt.Println("  --version, -v    Print version information")
	fmt.Println("  --help, -h       Print this help message")
	fmt.Println()
	fmt.Println("Environment variables:")
	fmt.Println("  OMR_LOG_LEVEL=debug      Enable debug logging")
	fmt.Println("  OMR_ANSWERKEY_DIR        Answer key directory (default answer_keys)")
	fmt.Println("  OMR_UPLOAD_DIR           Upload and ledger directory (default uploaded_omr)")
	fmt.Println("  OMR_RESULTS_CSV          Default ledger file (default scores.csv)")
	fmt.Println("  OMR_DATABASE_URL         Record results in Postgres instead of CSV")
	fmt.Println("  OMR_PARTITION=gap|count  Column partition strategy (default gap)")
	fmt.Println("  OMR_STRICT=true          Reject sheets with a wrong bubble count")
}

func main() {
	// Handle --version and -v flags
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "--version", "-v", "version":
			fmt.Printf("omr-scorer %s\n", Version)
			fmt.Printf("  Build time: %s\n", BuildTime)
			fmt.Printf("  Git commit: %s\n", GitCommit)
			return
		case "--help", "-h", "help":
			usage()
			return
		}
	}

	// Configure logging to stderr (stdout is for MCP protocol)
	log.SetOutput(os.Stderr)
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)

	global := flag.NewFlagSet("omr-scorer", flag.ExitOnError)
	configFile := global.String("config", "", "path to a YAML config file")
	global.Usage = usage
	_ = global.Parse(os.Args[1:])

	cfg, err := config.Load(*configFile)
	if err != nil {
		log.Fatalf("Config error: %v", err)
	}
	if cfg.Debug() {
		log.Printf("OMR Scorer v%s (built %s, commit %s)", Version, BuildTime, GitCommit)
		log.Printf("answer keys: %s, uploads: %s, partition: %s, strict: %v",
			cfg.AnswerKeyDir, cfg.UploadDir, cfg.Partition, cfg.Strict)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	args := global.Args()
	if len(args) == 0 {
		if err := runServer(ctx, cfg); err != nil {
			log.Fatalf("Server error: %v", err)
		}
		return
	}

	switch args[0] {
	case "score":
		err = runScore(ctx, cfg, args[1:])
	case "batch":
		err = runBatch(ctx, cfg, args[1:])
	case "key":
		err = runKey(cfg, args[1:])
	default:
		usage()
		os.Exit(2)
	}
	if err != nil {
		log.Fatalf("%s: %v", args[0], err)
	}
}

func runServer(ctx context.Context, cfg *config.Config) error {
	srv, err := server.New(cfg)
	if err != nil {
		return err
	}
	if cfg.DatabaseURL != "" {
		db, err := ledger.OpenPostgres(ctx, cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer db.Close()
		srv.UseLedger(db)
		if cfg.Debug() {
			log.Printf("recording results in postgres")
		}
	}
	return srv.Serve(ctx, os.Stdin, os.Stdout)
}

func newPipeline(cfg *config.Config) (*omr.Pipeline, error) {
	return omr.NewPipeline(cfg.Layout,
		omr.WithPartition(cfg.Partition),
		omr.WithStrict(cfg.Strict),
	)
}

func loadKey(cfg *config.Config, set string) (omr.AnswerSet, error) {
	store, err := answerkey.NewStore(cfg.AnswerKeyDir)
	if err != nil {
		return nil, err
	}
	return store.Load(set)
}

func openLedger(ctx context.Context, cfg *config.Config, csvName string) (ledger.Ledger, error) {
	if cfg.DatabaseURL != "" {
		return ledger.OpenPostgres(ctx, cfg.DatabaseURL)
	}
	return ledger.NewCSV(cfg.ResultsPath(csvName), cfg.Layout.SectionNames()), nil
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func runScore(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("score", flag.ExitOnError)
	set := fs.String("key", "", "answer key set name")
	student := fs.String("student", "", "student name; records the result when set")
	roll := fs.String("roll", "", "roll number")
	csvName := fs.String("csv", "", "ledger CSV in the upload directory")
	_ = fs.Parse(args)

	if *set == "" || fs.NArg() != 1 {
		return errors.New("usage: score -key SET [-student NAME -roll N] IMAGE")
	}

	key, err := loadKey(cfg, *set)
	if err != nil {
		return err
	}
	p, err := newPipeline(cfg)
	if err != nil {
		return err
	}
	res, err := p.ScoreFile(ctx, fs.Arg(0), key)
	if err != nil {
		return err
	}
	for _, w := range res.Detection.Diagnostics.Warnings {
		log.Printf("warning: %s", w)
	}

	if *student != "" {
		l, err := openLedger(ctx, cfg, *csvName)
		if err != nil {
			return err
		}
		defer l.Close()
		row := ledger.NewRow(*student, *roll, strings.ToUpper(*set), res.Report)
		if err := l.Append(ctx, row); err != nil {
			return err
		}
	}

	return printJSON(map[string]interface{}{
		"section_scores": res.Scores,
		"percentage":     res.Report.Percentage(),
		"answers":        res.Detection.Answers,
	})
}

type batchResult struct {
	File   string         `json:"file"`
	Scores map[string]int `json:"section_scores,omitempty"`
	Error  string         `json:"error,omitempty"`
}

func runBatch(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("batch", flag.ExitOnError)
	set := fs.String("key", "", "answer key set name")
	workers := fs.Int("workers", 4, "number of sheets scored in parallel")
	_ = fs.Parse(args)

	if *set == "" || fs.NArg() == 0 {
		return errors.New("usage: batch -key SET [-workers N] IMAGE...")
	}

	key, err := loadKey(cfg, *set)
	if err != nil {
		return err
	}
	p, err := newPipeline(cfg)
	if err != nil {
		return err
	}

	files := fs.Args()
	results := make([]batchResult, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, *workers))
	for i, file := range files {
		i, file := i, file
		g.Go(func() error {
			results[i].File = file
			res, err := p.ScoreFile(gctx, file, key)
			if err != nil {
				// A bad sheet is reported, not fatal; only cancellation stops the batch.
				if errors.Is(err, context.Canceled) {
					return err
				}
				results[i].Error = err.Error()
				return nil
			}
			results[i].Scores = res.Scores
			if cfg.Debug() {
				log.Printf("%s: %d", file, res.Report.Total)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	return printJSON(results)
}

func runKey(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("key", flag.ExitOnError)
	set := fs.String("set", "", "set name")
	file := fs.String("file", "", "answer-key block file (- for stdin)")
	_ = fs.Parse(args)

	if *set == "" || *file == "" {
		return errors.New("usage: key -set SET -file BLOCK.txt")
	}

	var data []byte
	var err error
	if *file == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(*file)
	}
	if err != nil {
		return err
	}

	key, err := answerkey.Parse(string(data), cfg.Layout)
	if err != nil {
		return err
	}
	store, err := answerkey.NewStore(cfg.AnswerKeyDir)
	if err != nil {
		return err
	}
	n, err := store.Save(*set, key)
	if err != nil {
		return err
	}
	fmt.Printf("Saved sectionwise key for set %s (%d questions).\n", strings.ToUpper(*set), n)
	return nil
}
