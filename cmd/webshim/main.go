package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"image"
	"io"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/1broseidon/webshim/internal/config"
	"github.com/1broseidon/webshim/internal/demoengine"
	"github.com/1broseidon/webshim/internal/ipc"
	"github.com/1broseidon/webshim/internal/lifecycle"
	"github.com/1broseidon/webshim/internal/loop"
	"github.com/1broseidon/webshim/internal/platform"
	"github.com/1broseidon/webshim/internal/tui"
	"github.com/1broseidon/webshim/internal/x11"
)

func main() {
	if len(os.Args) < 2 {
		printMainUsage(os.Stdout)
		os.Exit(0)
	}

	switch os.Args[1] {
	case "run":
		os.Exit(runRun(os.Args[2:]))
	case "status":
		os.Exit(runStatus(os.Args[2:]))
	case "views":
		os.Exit(runViews(os.Args[2:]))
	case "close":
		os.Exit(runClose(os.Args[2:]))
	case "navigate":
		os.Exit(runNavigate(os.Args[2:]))
	case "config":
		os.Exit(runConfig(os.Args[2:]))
	case "monitor":
		os.Exit(runMonitor(os.Args[2:]))
	case "mcp":
		os.Exit(runMCP(os.Args[2:]))
	case "help", "-h", "--help":
		printMainUsage(os.Stdout)
		os.Exit(0)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printMainUsage(os.Stderr)
		os.Exit(2)
	}
}

func printMainUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: webshim <command> [options]")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  run                 Open the window and run the engine (foreground)")
	fmt.Fprintln(w, "  status              Show driver status")
	fmt.Fprintln(w, "  views               List live views")
	fmt.Fprintln(w, "  close               Close the running window")
	fmt.Fprintln(w, "  navigate <url>      Load a URL in the top view")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  config validate     Validate configuration")
	fmt.Fprintln(w, "  config print        Print configuration")
	fmt.Fprintln(w, "  config explain      Explain a config value")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  monitor             Open live status monitor")
	fmt.Fprintln(w, "  mcp serve           Start MCP server (stdio transport)")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Run 'webshim <command> --help' for command-specific options.")
}

func loadConfig(path string) (*config.LoadResult, error) {
	if path == "" {
		return config.LoadWithSources()
	}
	return config.LoadFromPath(path)
}

func runRun(args []string) int {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	path := fs.String("path", "", "Config file path (default: $WEBSHIM_CONFIG or ~/.config/webshim/config.yaml)")
	backend := fs.String("backend", "", "Window backend override: x11 or headless")
	url := fs.String("url", "", "Initial URL override")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: webshim run [--path PATH] [--backend x11|headless] [--url URL] [-- engine args...]")
		fmt.Fprintln(os.Stderr, "")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	res, err := loadConfig(*path)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	cfg := res.Config
	if *backend != "" {
		cfg.Backend = config.Backend(*backend)
	}
	if *url != "" {
		cfg.Engine.URL = *url
	}
	// Everything after "--" is passed to the engine untouched.
	cfg.Engine.Args = append(cfg.Engine.Args, fs.Args()...)
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	logger := newLogger(cfg.Logging, os.Stderr)
	slog.SetDefault(logger)

	win, err := openWindow(cfg, logger)
	if err != nil {
		log.Fatalf("Failed to open window: %v", err)
	}
	defer win.Close()

	host := loop.NewHost(win.Waker(), loop.InitialViewport(win))
	eng := demoengine.New(host, demoengine.Options{
		FrameInterval: cfg.Engine.FrameInterval(),
		Animate:       cfg.Engine.Animate,
		URL:           cfg.Engine.URL,
		Args:          cfg.Engine.Args,
		Logger:        logger.With("component", "engine"),
	})
	drv := loop.New(host, eng, win, loop.Options{
		Host:                 lifecycle.PolicyHost{NavigationPolicy: cfg.Navigation.Policy()},
		ExitOnLastViewClosed: cfg.ExitOnLastViewClosed,
		Logger:               logger,
	})

	if cfg.IPC.Enabled {
		srv, err := ipc.NewServer(cfg.IPC.Socket, drv, logger.With("component", "ipc"))
		if err != nil {
			log.Fatalf("Failed to create IPC server: %v", err)
		}
		if err := srv.Start(); err != nil {
			log.Fatalf("Failed to start IPC server: %v", err)
		}
		defer srv.Stop()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("webshim started", "backend", cfg.Backend, "url", cfg.Engine.URL, "config_files", len(res.Files))
	if err := drv.Run(ctx); err != nil {
		logger.Error("event loop failed", "error", err)
		return 1
	}
	return 0
}

func openWindow(cfg *config.Config, logger *slog.Logger) (platform.Window, error) {
	size := image.Pt(cfg.Window.Width, cfg.Window.Height)
	switch cfg.Backend {
	case config.BackendHeadless:
		scale := cfg.Window.HiDPIScale
		if scale <= 0 {
			scale = 1
		}
		// Headless sizes are physical; the configured size is logical.
		physical := image.Pt(int(float32(size.X)*scale), int(float32(size.Y)*scale))
		return platform.NewHeadless(platform.HeadlessOptions{Size: physical, Scale: scale}), nil
	default:
		return x11.Open(x11.Options{
			Display: cfg.Display,
			Title:   cfg.Window.Title,
			Size:    size,
			Scale:   cfg.Window.HiDPIScale,
			Logger:  logger.With("component", "x11"),
		})
	}
}

func clientFor(path string) *ipc.Client {
	if path != "" {
		return ipc.NewClientAt(path)
	}
	return ipc.NewClient()
}

func runStatus(args []string) int {
	fs := flag.NewFlagSet("status", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	socket := fs.String("socket", "", "Control socket path (default: $XDG_RUNTIME_DIR/webshim.sock)")
	jsonOut := fs.Bool("json", false, "Print raw JSON")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: webshim status [--socket PATH] [--json]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Show driver status via IPC.")
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "status takes no arguments")
		fs.Usage()
		return 2
	}

	st, err := clientFor(*socket).GetStatus()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if *jsonOut {
		return printJSON(st)
	}

	vp := st.Viewport
	fmt.Printf("State:     %s\n", st.State)
	fmt.Printf("Mode:      %s\n", st.Mode)
	fmt.Printf("Viewport:  %dx%d @%gx\n", vp.Size.X, vp.Size.Y, vp.HiDPIScale)
	fmt.Printf("Top view:  %d %s\n", st.Top, st.Title)
	if st.URL != "" {
		fmt.Printf("URL:       %s\n", st.URL)
	}
	fmt.Printf("Frames:    %d (%d dropped)\n", st.Frames, st.Dropped)
	fmt.Printf("Animating: %v\n", st.Animating)
	fmt.Printf("Uptime:    %s\n", time.Duration(st.UptimeSeconds)*time.Second)
	return 0
}

func runViews(args []string) int {
	fs := flag.NewFlagSet("views", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	socket := fs.String("socket", "", "Control socket path")
	jsonOut := fs.Bool("json", false, "Print raw JSON")
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}

	data, err := clientFor(*socket).ListViews()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if *jsonOut {
		return printJSON(data)
	}
	if len(data.Views) == 0 {
		fmt.Println("no views")
		return 0
	}
	for _, v := range data.Views {
		marker := " "
		if v.Top {
			marker = "*"
		}
		fmt.Printf("%s %d\t%s\t%s\n", marker, v.ID, v.Title, v.URL)
	}
	return 0
}

func runClose(args []string) int {
	fs := flag.NewFlagSet("close", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	socket := fs.String("socket", "", "Control socket path")
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if err := clientFor(*socket).Close(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	fmt.Println("close requested")
	return 0
}

func runNavigate(args []string) int {
	fs := flag.NewFlagSet("navigate", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	socket := fs.String("socket", "", "Control socket path")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: webshim navigate [--socket PATH] <url>")
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return 2
	}
	if err := clientFor(*socket).Navigate(fs.Arg(0)); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func runMonitor(args []string) int {
	fs := flag.NewFlagSet("monitor", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	socket := fs.String("socket", "", "Control socket path")
	refresh := fs.Duration("refresh", tui.DefaultRefresh, "Status polling interval")
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if err := tui.Run(clientFor(*socket), *refresh); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func printJSON(v any) int {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}
