package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"

	"github.com/ironsheep/inpaint-studio-mcp/internal/config"
	"github.com/ironsheep/inpaint-studio-mcp/internal/discovery"
	"github.com/ironsheep/inpaint-studio-mcp/internal/remote"
	"github.com/ironsheep/inpaint-studio-mcp/internal/server"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

type CLI struct {
	Config    string           `help:"Config file (default ~/.config/inpaint-mcp/config.json)." type:"path" placeholder:"FILE"`
	Endpoint  string           `help:"Processing service base URL, e.g. http://localhost:5000."`
	Discover  bool             `help:"Find the processing service on the local network via mDNS."`
	LogLevel  string           `help:"Log level: debug, info, warn or error."`
	OutputDir string           `help:"Directory where processed results are saved." type:"path"`
	Version   kong.VersionFlag `short:"v" help:"Print version information and exit."`
}

func main() {
	var cli CLI
	kong.Parse(&cli,
		kong.Name("inpaint-mcp"),
		kong.Description("MCP server for mask drawing and remote image processing.\n\n"+
			"Communicates via MCP over stdin/stdout; logs go to stderr."),
		kong.UsageOnError(),
		kong.Vars{"version": fmt.Sprintf("inpaint-mcp %s (built %s, commit %s)", Version, BuildTime, GitCommit)},
	)

	if err := run(cli); err != nil {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
}

func run(cli CLI) error {
	cfg, loadErr := config.Load(cli.Config)
	cfg.ApplyEnv()

	// An endpoint named on the command line or in the environment
	// takes precedence over discovery.
	explicitEndpoint := os.Getenv(config.EnvEndpoint) != ""
	if cli.Endpoint != "" {
		cfg.Service.Endpoint = cli.Endpoint
		explicitEndpoint = true
	}
	if cli.Discover {
		cfg.Service.Discover = true
	}
	if cli.LogLevel != "" {
		cfg.LogLevel = cli.LogLevel
	}
	if cli.OutputDir != "" {
		cfg.OutputDir = cli.OutputDir
	}
	cfg.Validate()

	// stdout is reserved for the protocol
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	slog.SetDefault(logger)
	if loadErr != nil {
		logger.Warn("using default config", "error", loadErr)
	}
	logger.Debug("starting", "version", Version, "built", BuildTime, "commit", GitCommit)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	endpoint := cfg.Service.Endpoint
	if cfg.Service.Discover && !explicitEndpoint {
		found, err := discovery.Browse(ctx, discovery.ServiceType, discovery.DefaultTimeout)
		if err != nil {
			logger.Warn("service discovery failed", "fallback", endpoint, "error", err)
		} else {
			logger.Info("discovered processing service", "endpoint", found)
			endpoint = found
		}
	}

	client := remote.NewClient(endpoint,
		remote.WithTimeout(time.Duration(cfg.Service.TimeoutSeconds)*time.Second),
		remote.WithLogger(logger),
	)

	srv := server.New(server.Options{
		Service:   client,
		Style:     cfg.MaskStyle(),
		OutputDir: cfg.OutputDir,
		Logger:    logger,
		Version:   Version,
	})
	logger.Info("serving MCP on stdio", "endpoint", client.Endpoint(), "output_dir", cfg.OutputDir)
	return srv.Run(ctx)
}
