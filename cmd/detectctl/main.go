package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"sync"

	"detect_dashboard/internal/app"
	"detect_dashboard/internal/detectapi"
	"detect_dashboard/internal/ingest"
	"detect_dashboard/internal/normalize"
	"detect_dashboard/internal/orchestrator"
	"detect_dashboard/internal/pipeline"
	"detect_dashboard/internal/render"
	"detect_dashboard/internal/workspace"
)

const usage = `usage:
  detectctl [flags] video <file>
  detectctl [flags] image <file>
  detectctl [flags] text <file>|-
  detectctl [flags] batch <video|image|text> <files...>
  detectctl [flags] history
  detectctl [flags] logs <dest.zip>
  detectctl workspace

flags:
`

func main() {
	fs := flag.NewFlagSet("detectctl", flag.ExitOnError)
	asJSON := fs.Bool("json", false, "print results as JSON")
	save := fs.Bool("save", false, "save each result under the workspace reports directory")
	backendURL := fs.String("backend", "", "detection backend URL (overrides DETECT_BACKEND_URL)")
	limit := fs.Int("n", 20, "number of history rows to show")
	fs.Usage = func() {
		fmt.Fprint(fs.Output(), usage)
		fs.PrintDefaults()
	}
	_ = fs.Parse(os.Args[1:])
	args := fs.Args()
	if len(args) == 0 {
		fs.Usage()
		os.Exit(2)
	}

	if *backendURL != "" {
		os.Setenv("DETECT_BACKEND_URL", *backendURL)
	}
	env, err := app.Bootstrap()
	if err != nil {
		fatal(err)
	}
	defer env.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	out := output{w: os.Stdout, json: *asJSON, save: *save, ws: env.Workspace}
	switch cmd := args[0]; cmd {
	case "video", "image", "text":
		if len(args) != 2 {
			fs.Usage()
			os.Exit(2)
		}
		err = runSingle(ctx, env, out, normalize.Media(cmd), args[1])
	case "batch":
		if len(args) < 3 {
			fs.Usage()
			os.Exit(2)
		}
		m, perr := normalize.ParseMedia(args[1])
		if perr != nil {
			fatal(perr)
		}
		err = runBatch(ctx, env, out, m, args[2:])
	case "history":
		err = showHistory(ctx, env, out, *limit)
	case "logs":
		if len(args) != 2 {
			fs.Usage()
			os.Exit(2)
		}
		if err = env.Archive.ExportZip(args[1]); err == nil {
			fmt.Printf("Logs exported to %s\n", args[1])
		}
	case "workspace":
		fmt.Printf("Media Detect workspace ready at: %s\n", env.Workspace.Root)
		fmt.Printf("History: %s\n", env.Workspace.HistoryDB)
		fmt.Printf("Logs: %s\n", env.Archive.SessionFile())
	default:
		fs.Usage()
		os.Exit(2)
	}
	if err != nil {
		fatal(err)
	}
}

// terminalSink prints alerts and video progress to stderr.
func terminalSink(w io.Writer) orchestrator.Sink {
	var mu sync.Mutex
	return orchestrator.Funcs{
		OnProgress: func(m normalize.Media, p orchestrator.ProgressState, detail string) {
			mu.Lock()
			defer mu.Unlock()
			fmt.Fprintf(w, "\r[%3d%%] %-32s", p.Percent, detail)
			if p.Percent == 100 {
				fmt.Fprintln(w)
			}
		},
		OnAlert: func(m normalize.Media, message string) {
			mu.Lock()
			defer mu.Unlock()
			fmt.Fprintln(w, message)
		},
	}
}

func load(m normalize.Media, path string) (detectapi.Submission, error) {
	if m == normalize.Text && path == "-" {
		raw, err := io.ReadAll(os.Stdin)
		if err != nil {
			return detectapi.Submission{}, fmt.Errorf("read stdin: %w", err)
		}
		return detectapi.Submission{Media: m, Text: string(raw)}, nil
	}
	return ingest.Load(m, path)
}

func runSingle(ctx context.Context, env *app.Env, out output, m normalize.Media, path string) error {
	sub, err := load(m, path)
	if err != nil {
		return err
	}
	view, err := env.Orchestrator(m, terminalSink(os.Stderr)).Submit(ctx, sub)
	if err != nil {
		return err
	}
	return out.write(view)
}

func runBatch(ctx context.Context, env *app.Env, out output, m normalize.Media, paths []string) error {
	views := make([]render.View, len(paths))
	sink := orchestrator.Funcs{
		OnAlert: func(_ normalize.Media, message string) {
			fmt.Fprintln(os.Stderr, message)
		},
	}
	failures := pipeline.Process(paths, env.Config.BatchWorkers, func(i int, path string) error {
		sub, err := load(m, path)
		if err != nil {
			return err
		}
		views[i], err = env.Orchestrator(m, sink).Submit(ctx, sub)
		return err
	})
	failed := map[int]error{}
	for _, f := range failures {
		failed[f.Index] = f.Err
	}
	for i, path := range paths {
		if err, ok := failed[i]; ok {
			fmt.Fprintf(os.Stderr, "%s: %v\n", path, err)
			continue
		}
		if !out.json {
			fmt.Fprintf(out.w, "== %s\n", path)
		}
		if err := out.write(views[i]); err != nil {
			return err
		}
	}
	if len(failures) > 0 {
		return fmt.Errorf("%d of %d submissions failed", len(failures), len(paths))
	}
	return nil
}

func showHistory(ctx context.Context, env *app.Env, out output, limit int) error {
	if env.History == nil {
		return fmt.Errorf("history is disabled (DETECT_HISTORY=false)")
	}
	rows, err := env.History.Recent(ctx, limit)
	if err != nil {
		return err
	}
	if out.json {
		return json.NewEncoder(out.w).Encode(rows)
	}
	for _, r := range rows {
		line := fmt.Sprintf("%s  %-5s  %-9s  %-24s", r.CompletedAt.Local().Format("2006-01-02 15:04:05"), r.Media, r.Status, r.Source)
		if r.Error != "" {
			line += "  " + r.Error
		} else {
			line += fmt.Sprintf("  %s %d%%", r.Label, normalize.Percent(r.AIProbability))
		}
		fmt.Fprintln(out.w, strings.TrimRight(line, " "))
	}
	return nil
}

type output struct {
	w    io.Writer
	json bool
	save bool
	ws   *workspace.Paths
}

func (o output) write(v render.View) error {
	if o.save {
		path, err := workspace.SaveReport(o.ws, v)
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "Report saved to %s\n", path)
	}
	if o.json {
		enc := json.NewEncoder(o.w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	return render.WriteText(o.w, v)
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "detectctl: %v\n", err)
	os.Exit(1)
}
