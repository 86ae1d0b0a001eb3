package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/dvloznov/finance-chat/internal/assistant"
	"github.com/dvloznov/finance-chat/internal/babilonia"
	"github.com/dvloznov/finance-chat/internal/chat"
	"github.com/dvloznov/finance-chat/internal/config"
	"github.com/dvloznov/finance-chat/internal/domain"
	"github.com/dvloznov/finance-chat/internal/logger"
	"github.com/dvloznov/finance-chat/internal/money"
	"github.com/dvloznov/finance-chat/internal/reports"
	"github.com/dvloznov/finance-chat/internal/session"
)

func main() {
	// The REPL owns stdout; logs go to stderr.
	log := logger.NewConsole(os.Stderr).Level(zerolog.WarnLevel)
	if err := config.LoadDotEnv(); err != nil {
		log.Fatal().Err(err).Msg("Failed to load .env file")
	}
	cfg := config.Load(log)
	log = log.Level(logger.ParseLevel(cfg.LogLevel))

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "chat":
		runChat(log, cfg)
	case "babilonia":
		runBabilonia(log)
	case "report":
		runReport(log, cfg)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("Finance Chat CLI")
	fmt.Println("\nUsage:")
	fmt.Println("  cli <command> [options]")
	fmt.Println("\nCommands:")
	fmt.Println("  chat       Talk to the finance assistant from the terminal")
	fmt.Println("  babilonia  Evaluate a Babilonia profile JSON file")
	fmt.Println("  report     Build the month-close report of a ledger JSON file")
	fmt.Println("  help       Show this help message")
	fmt.Println("\nRun 'cli <command> -h' for more information on a command.")
}

func runChat(log zerolog.Logger, cfg *config.Config) {
	fs := flag.NewFlagSet("chat", flag.ExitOnError)
	seed := fs.Bool("seed", false, "Start with the demo ledger, agenda and goals")
	backend := fs.String("backend", cfg.Backend, "Assistant backend: ollama, gemini, anthropic or none")
	stream := fs.Bool("stream", true, "Stream assistant answers as they arrive")
	fs.Parse(os.Args[2:])
	cfg.Backend = *backend

	ctx := logger.WithContext(context.Background(), log)

	opts := cfg.AssistantOptions()
	completer, err := assistant.NewChatCompleter(ctx, opts)
	if err != nil {
		log.Fatal().Err(err).Str("backend", cfg.Backend).Msg("Failed to create assistant backend")
	}

	var classifier assistant.Classifier
	if cfg.ClassifierEnabled && cfg.Backend != assistant.BackendNone {
		classifier, err = assistant.NewClassifier(ctx, opts, cfg.ClassifyCacheTTL)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create category classifier")
		}
		if closer, ok := classifier.(io.Closer); ok {
			defer closer.Close()
		}
	}

	engine := chat.NewEngine(chat.Config{
		Classifier:       classifier,
		Completer:        completer,
		ClassifyTimeout:  cfg.ClassifyTimeout,
		AssistantTimeout: cfg.AssistantTimeout,
		Log:              log,
	})

	var sess *session.Session
	if *seed {
		sess = session.Seeded("cli", time.Now)
	} else {
		sess = session.New("cli", time.Now)
	}

	fmt.Println("Promethus pronto. Digite /sair para encerrar.")
	if err := chatLoop(ctx, os.Stdin, os.Stdout, engine, sess, *stream); err != nil {
		log.Fatal().Err(err).Msg("Chat loop failed")
	}
}

// chatLoop reads one message per line until EOF or /sair. /lancar and
// /cancelar answer the pending goal draft.
func chatLoop(ctx context.Context, in io.Reader, out io.Writer, engine *chat.Engine, sess *session.Session, stream bool) error {
	scanner := bufio.NewScanner(in)
	fmt.Fprint(out, "> ")

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		switch line {
		case "":
		case "/sair":
			return nil
		case "/lancar", "/cancelar":
			kind := domain.ActionSaveGoal
			if line == "/cancelar" {
				kind = domain.ActionCancelGoal
			}
			reply, err := engine.HandleAction(sess, domain.Action{Kind: kind})
			if err != nil {
				fmt.Fprintln(out, "Nenhuma meta pendente.")
				break
			}
			printReply(out, reply, false)
		default:
			var onChunk func(string)
			streamed := false
			if stream {
				onChunk = func(chunk string) {
					streamed = true
					fmt.Fprint(out, chunk)
				}
			}
			reply := engine.Respond(ctx, sess, line, onChunk)
			if streamed {
				fmt.Fprintln(out)
			}
			printReply(out, reply, streamed)
		}

		fmt.Fprint(out, "> ")
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("chatLoop: read input: %w", err)
	}
	return nil
}

// printReply writes every assistant message. A streamed answer was already
// written chunk by chunk, so the last message is skipped.
func printReply(out io.Writer, reply chat.Reply, streamed bool) {
	msgs := reply.Messages
	if streamed && len(msgs) > 0 {
		msgs = msgs[:len(msgs)-1]
	}
	for _, m := range msgs {
		fmt.Fprintln(out, m.Text())
		for _, a := range m.Actions {
			switch a.Kind {
			case domain.ActionSaveGoal:
				fmt.Fprintf(out, "  [%s] digite /lancar ou /cancelar\n", a.Label)
			case domain.ActionInitGoalDeposit:
				fmt.Fprintf(out, "  [%s]\n", a.Label)
			}
		}
	}
	if reply.Suggestion != "" {
		fmt.Fprintf(out, "Sugestao: %s\n", reply.Suggestion)
	}
}

func runBabilonia(log zerolog.Logger) {
	fs := flag.NewFlagSet("babilonia", flag.ExitOnError)
	file := fs.String("file", "", "Profile JSON file (- for stdin)")
	fs.Parse(os.Args[2:])

	if *file == "" {
		log.Fatal().Msg("Usage: cli babilonia -file PROFILE.json")
	}

	r, closeFn, err := openInput(*file)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open profile")
	}
	defer closeFn()

	result, err := evaluateProfile(r)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to evaluate profile")
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(result); err != nil {
		log.Fatal().Err(err).Msg("Failed to write result")
	}
}

type profileResult struct {
	Profile    babilonia.Profile    `json:"profile"`
	Evaluation babilonia.Evaluation `json:"evaluation"`
	Planning   babilonia.Planning   `json:"planning"`
}

type expenseInput struct {
	Description string `json:"description"`
	Amount      any    `json:"amount"`
}

// evaluateProfile reads a profile with the same lenient rules as the API:
// numeric fields may be strings, expenses are classified on insert.
func evaluateProfile(r io.Reader) (profileResult, error) {
	var raw map[string]json.RawMessage
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return profileResult{}, fmt.Errorf("evaluateProfile: decode: %w", err)
	}

	const id = "cli"
	store := babilonia.NewStore()

	fields := make(map[string]any, len(raw))
	for name, value := range raw {
		if name == "expenses" {
			var items []expenseInput
			if err := json.Unmarshal(value, &items); err != nil {
				return profileResult{}, fmt.Errorf("evaluateProfile: decode expenses: %w", err)
			}
			for _, it := range items {
				store.AddExpense(id, it.Description, numberOf(it.Amount))
			}
			continue
		}
		var v any
		if err := json.Unmarshal(value, &v); err != nil {
			return profileResult{}, fmt.Errorf("evaluateProfile: decode %s: %w", name, err)
		}
		fields[name] = v
	}

	p, err := store.UpdateMany(id, fields)
	if err != nil {
		return profileResult{}, fmt.Errorf("evaluateProfile: %w", err)
	}

	return profileResult{
		Profile:    p,
		Evaluation: babilonia.Evaluate(p),
		Planning:   babilonia.Plan(p),
	}, nil
}

func numberOf(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case string:
		return money.ParseNumber(n)
	default:
		return 0
	}
}

func runReport(log zerolog.Logger, cfg *config.Config) {
	fs := flag.NewFlagSet("report", flag.ExitOnError)
	file := fs.String("file", "", "Ledger JSON file: an array of transactions (- for stdin)")
	sessionID := fs.String("session", "cli", "Session ID used in the report name")
	upload := fs.Bool("upload", false, "Upload the report to the configured bucket")
	bucket := fs.String("bucket", cfg.ReportBucket, "GCS bucket (or set REPORT_BUCKET env)")
	fs.Parse(os.Args[2:])

	if *file == "" {
		log.Fatal().Msg("Usage: cli report -file LEDGER.json [-upload]")
	}

	r, closeFn, err := openInput(*file)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open ledger")
	}
	defer closeFn()

	now := time.Now()
	sess, err := loadLedger(r, *sessionID, now)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load ledger")
	}

	report := reports.Build(sess.Snapshot(), now)

	if !*upload {
		if err := reports.Encode(os.Stdout, report); err != nil {
			log.Fatal().Err(err).Msg("Failed to write report")
		}
		return
	}

	if *bucket == "" {
		log.Fatal().Msg("Error: -bucket or REPORT_BUCKET is required with -upload")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	publisher, err := reports.NewGCSPublisher(ctx, *bucket, cfg.CredentialsFile)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create report publisher")
	}
	defer publisher.Close()

	uri, err := publisher.Publish(ctx, report)
	if err != nil {
		log.Fatal().Err(err).Msg("Upload failed")
	}

	fmt.Printf("Uploaded month-close report to %s\n", uri)
}

type ledgerEntry struct {
	Amount      any         `json:"amount"`
	Category    string      `json:"category"`
	Description string      `json:"description"`
	Kind        domain.Kind `json:"kind"`
	CreatedAt   time.Time   `json:"created_at"`
}

// loadLedger replays a ledger file into a fresh session, oldest entry first.
// Entries without a date are stamped with now.
func loadLedger(r io.Reader, id string, now time.Time) (*session.Session, error) {
	var entries []ledgerEntry
	if err := json.NewDecoder(r).Decode(&entries); err != nil {
		return nil, fmt.Errorf("loadLedger: decode: %w", err)
	}

	sess := session.New(id, func() time.Time { return now })
	for _, e := range entries {
		amount := numberOf(e.Amount)
		if amount <= 0 {
			continue
		}
		category := strings.TrimSpace(e.Category)
		if category == "" {
			category = domain.CategoryOther
		}
		kind := e.Kind
		if kind != domain.KindIncome && kind != domain.KindExpense {
			kind = domain.KindForCategory(category)
		}
		created := e.CreatedAt
		if created.IsZero() {
			created = now
		}
		sess.Record(domain.NewTransaction(amount, category, e.Description, kind, created))
	}
	return sess, nil
}

func openInput(path string) (io.Reader, func(), error) {
	if path == "-" {
		return os.Stdin, func() {}, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("openInput: %w", err)
	}
	return f, func() { f.Close() }, nil
}
