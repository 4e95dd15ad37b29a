package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vanderheijden86/codewalk/pkg/config"
	"github.com/vanderheijden86/codewalk/pkg/debug"
	"github.com/vanderheijden86/codewalk/pkg/export"
	"github.com/vanderheijden86/codewalk/pkg/metrics"
	"github.com/vanderheijden86/codewalk/pkg/progress"
	"github.com/vanderheijden86/codewalk/pkg/ui"
	"github.com/vanderheijden86/codewalk/pkg/version"
	"github.com/vanderheijden86/codewalk/pkg/walkthrough"
	"github.com/vanderheijden86/codewalk/pkg/watcher"
)

// options holds the parsed command line.
type options struct {
	static     bool
	json       bool
	check      bool
	noAutoplay bool
	watch      bool
	resume     bool
	start      int // -1 when not given
	interval   time.Duration
	width      int
	configPath string
	version    bool
	help       bool
	target     string
}

func parseFlags(args []string, stdout, stderr io.Writer) (options, error) {
	var o options
	fs := flag.NewFlagSet("codewalk", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.BoolVar(&o.static, "static", false, "Show every step at once (scrolling player)")
	fs.BoolVar(&o.json, "json", false, "Print the walkthrough as JSON and exit")
	fs.BoolVar(&o.check, "check", false, "Report authoring problems and exit")
	fs.BoolVar(&o.noAutoplay, "no-autoplay", false, "Start with autoplay paused")
	fs.BoolVar(&o.watch, "watch", false, "Reload the walkthrough when the file changes")
	fs.BoolVar(&o.resume, "resume", false, "Resume at the step reached last time")
	fs.IntVar(&o.start, "start", -1, "Initial step (1-based)")
	fs.DurationVar(&o.interval, "interval", 0, "Autoplay interval (e.g. 5s)")
	fs.IntVar(&o.width, "width", 0, "Render width for static output (0 = terminal width)")
	fs.StringVar(&o.configPath, "config", "", "Config file (default: ~/.config/codewalk/config.yaml)")
	fs.BoolVar(&o.version, "version", false, "Show version")
	fs.BoolVar(&o.help, "help", false, "Show help")
	fs.Usage = func() {
		fmt.Fprintln(fs.Output(), "Usage: codewalk [options] <walkthrough.md | directory | name>")
		fmt.Fprintln(fs.Output(), "\nPlay a Markdown code walkthrough in the terminal.")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return o, err
	}
	if o.help {
		fs.SetOutput(stdout)
		fs.Usage()
		return o, nil
	}
	if fs.NArg() > 1 {
		return o, fmt.Errorf("expected one walkthrough, got %d arguments", fs.NArg())
	}
	o.target = fs.Arg(0)
	if o.start == 0 || o.start < -1 {
		return o, fmt.Errorf("--start must be 1 or more, got %d", o.start)
	}
	if o.interval < 0 {
		return o, fmt.Errorf("--interval must not be negative, got %s", o.interval)
	}
	return o, nil
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	defer debug.Close()

	o, err := parseFlags(args, stdout, stderr)
	if errors.Is(err, flag.ErrHelp) {
		return 0
	}
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 2
	}

	if o.help {
		return 0
	}
	if o.version {
		fmt.Fprintf(stdout, "codewalk %s\n", version.String())
		return 0
	}

	cfg, err := loadConfig(o.configPath)
	if err != nil {
		// Non-fatal: continue without config
		fmt.Fprintf(stderr, "Warning: %v (using defaults)\n", err)
		cfg = config.DefaultConfig()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	path, err := resolveTarget(ctx, o.target, cfg)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	doc, err := walkthrough.Load(path)
	if err != nil {
		fmt.Fprintf(stderr, "Error loading walkthrough: %v\n", err)
		return 1
	}

	if o.check {
		return check(doc, stdout)
	}
	if o.json {
		snap, err := export.Build(doc)
		if err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return 1
		}
		if err := export.Write(stdout, snap); err != nil {
			fmt.Fprintf(stderr, "Error writing JSON: %v\n", err)
			return 1
		}
		return 0
	}

	s, err := resolveSettings(cfg, doc, o)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	code := play(ctx, doc, s, o, cfg, stdout, stderr)
	if debug.Enabled() {
		_ = metrics.WriteReport(stderr)
	}
	return code
}

func loadConfig(path string) (config.Config, error) {
	if path != "" {
		return config.LoadFrom(path)
	}
	return config.Load()
}

// resolveTarget turns the command line argument into a walkthrough file. A
// directory opens a picker over its walkthroughs, a name is looked up in the
// config, and no argument means the current directory.
func resolveTarget(ctx context.Context, target string, cfg config.Config) (string, error) {
	if target == "" {
		target = "."
	}
	if info, err := os.Stat(target); err == nil {
		if !info.IsDir() {
			return target, nil
		}
		candidates, err := walkthrough.Discover(ctx, target)
		if err != nil {
			return "", err
		}
		path, err := ui.PickWalkthrough(candidates)
		if errors.Is(err, ui.ErrNoWalkthroughs) {
			return "", fmt.Errorf("%w in %s", err, target)
		}
		return path, err
	}
	if w := cfg.FindWalkthrough(target); w != nil {
		return w.ResolvedPath(), nil
	}
	return "", fmt.Errorf("walkthrough %q not found (not a file, directory or configured name)", target)
}

// settings is the effective player configuration: config defaults, then the
// walkthrough frontmatter, then command line flags.
type settings struct {
	autoplay bool
	interval time.Duration
	query    ui.SwapQuery
	theme    string
	start    int // 0-based, -1 when neither frontmatter nor flags set it
	width    int
}

func resolveSettings(cfg config.Config, doc *walkthrough.Document, o options) (settings, error) {
	s := settings{
		autoplay: doc.AutoplayEnabled(cfg.Autoplay.Enabled),
		interval: cfg.Autoplay.Interval,
		theme:    cfg.UI.Theme,
		start:    -1,
		width:    cfg.UI.Width,
	}
	rawQuery := cfg.UI.StaticQuery

	if doc.Meta.Interval > 0 {
		s.interval = doc.Meta.Interval
	}
	if doc.Meta.StaticQuery != "" {
		rawQuery = doc.Meta.StaticQuery
	}
	if doc.Meta.Theme != "" {
		s.theme = doc.Meta.Theme
	}
	if start, ok := doc.StartIndex(); ok {
		s.start = start
	}

	if o.noAutoplay {
		s.autoplay = false
	}
	if o.interval > 0 {
		s.interval = o.interval
	}
	if o.start > 0 {
		s.start = o.start - 1
	}
	if o.width > 0 {
		s.width = o.width
	}
	if o.static {
		rawQuery = "static"
	}

	q, err := ui.ParseSwapQuery(rawQuery)
	if err != nil {
		return s, err
	}
	s.query = q

	if s.start >= doc.Len() {
		return s, fmt.Errorf("start step %d is past the last step (%d steps)", s.start+1, doc.Len())
	}
	return s, nil
}

func check(doc *walkthrough.Document, w io.Writer) int {
	problems := doc.Lint()
	for _, p := range problems {
		level := "warning"
		if p.Fatal {
			level = "error"
		}
		fmt.Fprintf(w, "%s: %s: %s\n", doc.Path, level, p)
	}
	if walkthrough.HasFatal(problems) {
		return 1
	}
	if len(problems) == 0 {
		fmt.Fprintf(w, "%s: ok (%d steps)\n", doc.Path, doc.Len())
	}
	return 0
}

func play(ctx context.Context, doc *walkthrough.Document, s settings, o options, cfg config.Config, stdout, stderr io.Writer) int {
	mode, termWidth := ui.DetectMode(s.query)
	width := s.width
	if width <= 0 {
		width = termWidth
	}
	debug.Log("codewalk: %s in %s mode (query %q, width %d)", doc.Path, mode, s.query, width)

	theme := ui.DefaultTheme(lipgloss.DefaultRenderer())

	if mode == ui.ModeStatic {
		if _, _, interactive := ui.TerminalSize(); !interactive {
			out, err := ui.RenderStatic(ctx, doc, ui.StaticOptions{Theme: theme, MarkdownStyle: s.theme, Width: width})
			if err != nil {
				fmt.Fprintf(stderr, "Error: %v\n", err)
				return 1
			}
			fmt.Fprintln(stdout, out)
			return 0
		}
		m, err := ui.NewStaticModel(doc, ui.StaticOptions{Theme: theme, MarkdownStyle: s.theme, Width: width})
		if err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return 1
		}
		if _, err := runTUIProgram(m); err != nil {
			fmt.Fprintf(stderr, "Error running codewalk: %v\n", err)
			return 1
		}
		return 0
	}

	store := openProgress()
	if store != nil {
		defer store.Close()
	}

	start := s.start
	if start < 0 {
		start = 0
		if o.resume && store != nil {
			e, ok, err := store.Last(ctx, doc.Path)
			if err != nil {
				debug.Log("codewalk: resume lookup: %v", err)
			}
			start = progress.ResumeIndex(e, ok, doc.Len())
		}
	}

	opts := []ui.DynamicOption{
		ui.WithTheme(theme, s.theme),
		ui.WithAutoplay(s.autoplay, s.interval),
	}
	if o.watch {
		w, err := watcher.NewWatcher(doc.Path, watcher.WithDebounce(cfg.Watch.Debounce))
		if err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return 1
		}
		if err := w.Start(ctx); err != nil {
			fmt.Fprintf(stderr, "Warning: live reload disabled: %v\n", err)
		} else {
			defer w.Stop()
			opts = append(opts, ui.WithWatcher(w))
		}
	}

	m, err := ui.NewDynamicModel(ctx, doc, start, opts...)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	defer m.Close()

	final, err := runTUIProgram(m)
	if err != nil {
		fmt.Fprintf(stderr, "Error running codewalk: %v\n", err)
		return 1
	}

	if fm, ok := final.(ui.DynamicModel); ok && store != nil {
		st := fm.State()
		// A background context: the signal context is already done on Ctrl+C.
		if err := store.Save(context.Background(), doc.Path, st.StepIndex, doc.Len()); err != nil {
			debug.Log("codewalk: saving progress: %v", err)
		}
	}
	return 0
}

// openProgress opens the resume database. Failures only disable resuming.
func openProgress() *progress.Store {
	store, err := progress.Open(progress.DefaultPath())
	if err != nil {
		debug.Log("codewalk: progress store: %v", err)
		return nil
	}
	return store
}

func runTUIProgram(m tea.Model) (tea.Model, error) {
	p := tea.NewProgram(
		m,
		tea.WithAltScreen(),
		tea.WithoutSignalHandler(),
	)

	runDone := make(chan struct{})
	defer close(runDone)

	// Graceful shutdown on SIGINT/SIGTERM.
	sigCh := make(chan os.Signal, 2)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-runDone:
			return
		case <-sigCh:
		}

		p.Quit()

		select {
		case <-runDone:
			return
		case <-sigCh:
		case <-time.After(5 * time.Second):
		}

		p.Kill()
	}()

	// Optional auto-quit for automated tests: set CODEWALK_TUI_AUTOCLOSE_MS.
	if v := os.Getenv("CODEWALK_TUI_AUTOCLOSE_MS"); v != "" {
		if ms, err := strconv.Atoi(v); err == nil && ms > 0 {
			go func() {
				timer := time.NewTimer(time.Duration(ms) * time.Millisecond)
				defer timer.Stop()

				select {
				case <-runDone:
					return
				case <-timer.C:
				}

				p.Quit()
			}()
		}
	}

	final, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) || errors.Is(err, tea.ErrInterrupted) {
		return final, nil
	}
	return final, err
}
