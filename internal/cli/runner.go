// Package cli dispatches tada's subcommands.
package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/mattn/go-isatty"

	"github.com/Makepad-fr/tada/internal/api"
	"github.com/Makepad-fr/tada/internal/auth"
	"github.com/Makepad-fr/tada/internal/config"
	"github.com/Makepad-fr/tada/internal/fetch"
	"github.com/Makepad-fr/tada/internal/fixtures"
	"github.com/Makepad-fr/tada/internal/logging"
	"github.com/Makepad-fr/tada/internal/model"
	"github.com/Makepad-fr/tada/internal/telemetry"
	"github.com/Makepad-fr/tada/internal/tui"
	"github.com/Makepad-fr/tada/internal/ui"
)

const listWidth = 80

// Options carry root flags and the process surroundings.
// Zero values mean the real process: os.Stdin, os.Stdout, os.Environ, ~/.tada.
type Options struct {
	Flags config.Flags

	Stdin          io.Reader
	Stdout, Stderr io.Writer
	Lookup         func(string) (string, bool)
	Dir            string // config and credentials directory
	EnvFile        string
	IsTTY          func() bool
}

type runner struct {
	ctx context.Context
	opt Options
	cfg *config.Loaded
	dir string
}

// Run dispatches subcommands and returns an exit code (0 ok, 1 error, 2 usage).
func Run(ctx context.Context, args []string, opt Options) int {
	opt = withDefaults(opt)
	ui.SetOutput(opt.Stdout, opt.Stderr)

	cmd, a := "tui", []string(nil)
	if len(args) > 0 {
		cmd, a = args[0], args[1:]
	}
	if cmd == "help" || cmd == "-h" || cmd == "--help" {
		PrintHelp(opt.Stdout)
		return 0
	}

	r, err := newRunner(ctx, opt)
	if err != nil {
		ui.Fail(err.Error())
		return 2
	}

	switch cmd {
	case "tui":
		return r.doTUI()
	case "ls":
		return r.doList(a)
	case "auth":
		return r.doAuth(a)
	case "fixtures":
		return r.doFixtures(a)
	case "config":
		return r.doConfig()
	}

	ui.Fail("unknown subcommand: " + cmd)
	fmt.Fprintln(opt.Stderr)
	PrintHelp(opt.Stderr)
	return 2
}

func withDefaults(opt Options) Options {
	if opt.Stdin == nil {
		opt.Stdin = os.Stdin
	}
	if opt.Stdout == nil {
		opt.Stdout = os.Stdout
	}
	if opt.Stderr == nil {
		opt.Stderr = os.Stderr
	}
	if opt.Lookup == nil {
		opt.Lookup = os.LookupEnv
	}
	if opt.IsTTY == nil {
		opt.IsTTY = func() bool {
			return isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
		}
	}
	return opt
}

func newRunner(ctx context.Context, opt Options) (*runner, error) {
	dir := opt.Dir
	if dir == "" {
		d, err := config.Dir()
		if err != nil {
			return nil, err
		}
		dir = d
	}
	cfg, err := config.Load(config.Options{
		Dir:     dir,
		EnvFile: opt.EnvFile,
		Lookup:  opt.Lookup,
		Flags:   opt.Flags,
	})
	if err != nil {
		return nil, err
	}
	ui.SetTheme(cfg.Theme)
	return &runner{ctx: ctx, opt: opt, cfg: cfg, dir: dir}, nil
}

func PrintHelp(w io.Writer) {
	fmt.Fprint(w, `tada - browse a remote todo list

Usage:
  tada [root flags] [subcommand] [args]

Subcommands:
  tui (default)                      Interactive viewer with filters
  ls [--user N] [--status S] [--sort D]
                                     Fetch once and print the list
  auth <login|logout|status|whoami>  Token authentication
  fixtures [--addr A] [--count N]    Serve a fake todos API
  config                             Show the effective configuration

Root flags:
  --config FILE   config file (default ~/.tada/config.toml)
  --api URL       todos API base URL
  --theme NAME    `+strings.Join(ui.ThemeNames(), "|")+`
  --log-level L   debug|info|warn|error
  --trace FILE    write request traces to FILE

Examples:
  tada
  tada ls --user 3 --status active --sort asc
  tada fixtures --addr :8080 &
  tada --api http://localhost:8080 ls
`)
}

// -------------- shared plumbing ----------------

func (r *runner) logOptions() logging.Options {
	o := logging.DefaultOptions()
	o.Level = r.cfg.LogLevel
	o.Format = r.cfg.LogFormat
	return o
}

// client builds the API client with the saved token and tracing.
// The returned shutdown flushes traces.
func (r *runner) client(logger *log.Logger) (*api.Client, telemetry.Shutdown, error) {
	tp, shutdown, err := telemetry.Setup(r.cfg.TraceFile)
	if err != nil {
		return nil, nil, err
	}
	opts := []api.Option{api.WithLogger(logger), api.WithTracerProvider(tp)}

	ti, err := r.tokens().Get()
	if err != nil {
		logger.Warn("ignoring saved token", "err", err)
	} else if ti != nil {
		opts = append(opts, api.WithToken(ti.Token))
	}

	c, err := api.New(r.cfg.APIURL, opts...)
	if err != nil {
		_ = shutdown(context.Background())
		return nil, nil, err
	}
	return c, shutdown, nil
}

func (r *runner) tokens() auth.Store {
	return auth.Store{Dir: r.dir, Getenv: r.cfg.Getenv}
}

// -------------- subcommand impls ----------------

func (r *runner) doTUI() int {
	if !r.opt.IsTTY() {
		return r.doList(nil)
	}

	logger, closer, err := logging.NewFile(r.cfg.LogFile, r.logOptions())
	if err != nil {
		ui.Fail("log: " + err.Error())
		return 1
	}
	defer closer.Close()

	c, shutdown, err := r.client(logger)
	if err != nil {
		ui.Fail(err.Error())
		return 1
	}
	defer shutdown(context.Background())

	err = tui.Run(r.ctx, tui.Options{
		Source:  c,
		Users:   r.cfg.Users,
		Timeout: r.cfg.Timeout,
		Logger:  logger,
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		ui.Fail("tui: " + err.Error())
		return 1
	}
	return 0
}

func (r *runner) doList(args []string) int {
	fs := flag.NewFlagSet("ls", flag.ContinueOnError)
	fs.SetOutput(r.opt.Stderr)
	user := fs.Int("user", 0, "only todos of this user id (0 = all users)")
	status := fs.String("status", string(model.StatusAll), "all|completed|active")
	order := fs.String("sort", string(model.SortDesc), "desc (newest first) | asc (oldest first)")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() > 0 {
		ui.Fail("ls: unexpected arguments: " + strings.Join(fs.Args(), " "))
		return 2
	}

	f, err := listFilter(*user, *status, *order)
	if err != nil {
		ui.Fail("ls: " + err.Error())
		return 2
	}

	logger, err := logging.New(r.opt.Stderr, r.logOptions())
	if err != nil {
		ui.Fail(err.Error())
		return 2
	}
	c, shutdown, err := r.client(logger)
	if err != nil {
		ui.Fail(err.Error())
		return 1
	}
	defer shutdown(context.Background())

	h := fetch.New(c, fetch.WithTimeout(r.cfg.Timeout), fetch.WithLogger(logger))
	defer h.Close()
	res := h.Load(r.ctx, f)

	ui.Panel([]string{
		ui.Current().Muted.Render(f.String()),
		"",
		ui.RenderList(res, ui.ListOptions{Width: listWidth}),
	})
	switch res.Kind() {
	case model.KindFailed:
		ui.Hint("run the command again to retry")
		return 1
	case model.KindLoading:
		ui.Fail("interrupted")
		return 1
	}
	return 0
}

func listFilter(user int, status, order string) (model.Filter, error) {
	f := model.DefaultFilter()
	if user < 0 {
		return f, fmt.Errorf("--user must be a positive id, got %d", user)
	}
	if user > 0 {
		f = f.WithAssignee(&user)
	}
	s, err := model.ParseStatus(status)
	if err != nil {
		return f, err
	}
	o, err := model.ParseSort(order)
	if err != nil {
		return f, err
	}
	return f.WithStatus(s).WithSort(o), nil
}

func (r *runner) doFixtures(args []string) int {
	fs := flag.NewFlagSet("fixtures", flag.ContinueOnError)
	fs.SetOutput(r.opt.Stderr)
	addr := fs.String("addr", ":8080", "listen address")
	count := fs.Int("count", 200, "number of todos to serve")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if *count < 0 {
		ui.Fail("fixtures: --count must not be negative")
		return 2
	}

	logger, err := logging.New(r.opt.Stderr, r.logOptions())
	if err != nil {
		ui.Fail(err.Error())
		return 2
	}
	users := r.cfg.Users
	if users <= 0 {
		users = config.DefaultUsers
	}
	srv := fixtures.New(fixtures.Generate(*count, users), fixtures.WithLogger(logger))

	errc := make(chan error, 1)
	go func() { errc <- srv.Start(*addr) }()
	ui.OK(fmt.Sprintf("serving %d todos for %d users on %s", *count, users, *addr))
	ui.Hint(fmt.Sprintf("point the viewer at it: %s=http://localhost%s tada", config.EnvAPIURL, portOf(*addr)))

	select {
	case err := <-errc:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			ui.Fail("fixtures: " + err.Error())
			return 1
		}
	case <-r.ctx.Done():
		if err := srv.Close(); err != nil {
			ui.Fail("fixtures: " + err.Error())
			return 1
		}
	}
	return 0
}

func portOf(addr string) string {
	if i := strings.LastIndex(addr, ":"); i >= 0 {
		return addr[i:]
	}
	return ""
}

func (r *runner) doConfig() int {
	lines := []string{ui.Current().Title.Render("Configuration")}
	file := r.cfg.File
	if file == "" {
		file = "(none)"
	}
	lines = append(lines, ui.Current().Muted.Render("file: "+file), "")
	lines = append(lines, r.cfg.Describe()...)
	ui.Panel(lines)
	return 0
}

// Main parses the root flags in args (without the program name) and runs
// the rest as a subcommand.
func Main(ctx context.Context, args []string) int {
	fs := flag.NewFlagSet("tada", flag.ContinueOnError)
	var f config.Flags
	fs.StringVar(&f.ConfigPath, "config", "", "config file")
	fs.StringVar(&f.APIURL, "api", "", "todos API base URL")
	fs.StringVar(&f.Theme, "theme", "", "color theme")
	fs.StringVar(&f.LogLevel, "log-level", "", "debug|info|warn|error")
	fs.StringVar(&f.TraceFile, "trace", "", "write request traces to this file")
	fs.Usage = func() { PrintHelp(fs.Output()) }
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	return Run(ctx, fs.Args(), Options{Flags: f})
}
