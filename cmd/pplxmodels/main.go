// pplxmodels lists the models available to a Perplexity session.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/alecthomas/kong"
	"github.com/roelfdiedericks/pplxmodels/internal/config"
	"github.com/roelfdiedericks/pplxmodels/internal/fetcher"
	. "github.com/roelfdiedericks/pplxmodels/internal/logging"
	"github.com/roelfdiedericks/pplxmodels/internal/models"
	"github.com/roelfdiedericks/pplxmodels/internal/output"
	"github.com/roelfdiedericks/pplxmodels/internal/paths"
	"github.com/roelfdiedericks/pplxmodels/internal/session"
)

const version = "0.1.0"

// CLI is the kong command tree.
type CLI struct {
	Token       string        `help:"Session token (__Secure-next-auth.session-token cookie)." env:"PPLX_SESSION_TOKEN"`
	Config      string        `help:"Config file (default ./pplxmodels.json or ~/.pplxmodels/pplxmodels.json)." type:"path"`
	BaseURL     string        `name:"base-url" help:"Service base URL."`
	Impersonate string        `help:"Client backend: http or browser."`
	Timeout     time.Duration `help:"Per-request timeout."`
	Format      string        `short:"f" help:"Output format: table, json or yaml. Default is table on a terminal, json otherwise."`
	Out         string        `short:"o" help:"Also write the result as JSON to this file." type:"path"`
	Debug       bool          `help:"Enable debug logging."`

	List    ListCmd    `cmd:"" default:"1" help:"List available models."`
	Get     GetCmd     `cmd:"" help:"Show one model."`
	Version VersionCmd `cmd:"" help:"Print version."`
}

// Context is passed to every command's Run.
type Context struct {
	ctx    context.Context
	cfg    *config.Config
	format output.Format
	out    string
}

func (c *Context) fetcherOptions() []fetcher.Option {
	return []fetcher.Option{
		fetcher.WithBaseURL(c.cfg.BaseURL),
		fetcher.WithTimeout(time.Duration(c.cfg.Timeout)),
		fetcher.WithImpersonate(c.cfg.Impersonate),
		fetcher.WithBrowserOptions(c.cfg.Browser),
	}
}

func (c *Context) emit(list []models.ModelInfo) error {
	if c.out != "" {
		if err := output.WriteFile(c.out, list); err != nil {
			return err
		}
	}
	return output.Write(os.Stdout, list, c.format)
}

type ListCmd struct{}

func (cmd *ListCmd) Run(c *Context) error {
	return fetcher.Use(c.cfg.Token, func(f *fetcher.Fetcher) error {
		list := f.FetchModels(c.ctx)
		L_info("models fetched", "count", len(list), "source", f.Source())
		return c.emit(list)
	}, c.fetcherOptions()...)
}

type GetCmd struct {
	ID string `arg:"" help:"Model identifier."`
}

func (cmd *GetCmd) Run(c *Context) error {
	return fetcher.Use(c.cfg.Token, func(f *fetcher.Fetcher) error {
		m, ok := f.GetModelByID(c.ctx, cmd.ID)
		if !ok {
			return fmt.Errorf("model %q not found (source: %s)", cmd.ID, f.Source())
		}
		if output.Resolve(c.format, os.Stdout) == output.FormatTable {
			if c.out != "" {
				if err := output.WriteFile(c.out, []models.ModelInfo{m}); err != nil {
					return err
				}
			}
			_, err := fmt.Fprint(os.Stdout, output.Detail(m))
			return err
		}
		return c.emit([]models.ModelInfo{m})
	}, c.fetcherOptions()...)
}

type VersionCmd struct{}

func (cmd *VersionCmd) Run(c *Context) error {
	fmt.Printf("pplxmodels %s\n", version)
	return nil
}

func main() {
	var cli CLI
	kctx := kong.Parse(&cli,
		kong.Name("pplxmodels"),
		kong.Description("List the AI models available to a Perplexity session."),
		kong.UsageOnError(),
	)

	logCfg := DefaultConfig()
	if cli.Debug {
		logCfg.Level = LevelDebug
		logCfg.ShowCaller = true
	}
	Init(logCfg)

	if kctx.Command() == "version" {
		kctx.FatalIfErrorf(kctx.Run(&Context{}))
		return
	}

	cfg, err := config.Load(cli.Config)
	if err != nil {
		L_fatal("failed to load config: %v", err)
	}
	if err := applyFlags(cfg, &cli); err != nil {
		L_fatal("%v", err)
	}
	if cfg.Debug {
		SetLevel(LevelDebug)
	}
	L_object("config", cfg.Redacted())

	format, err := output.ParseFormat(cli.Format)
	if err != nil {
		L_fatal("%v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err = kctx.Run(&Context{ctx: ctx, cfg: cfg, format: format, out: cli.Out})
	stop()
	if err != nil {
		L_error("%v", err)
		os.Exit(1)
	}
}

// applyFlags lets command-line flags override the config file, then
// revalidates.
func applyFlags(cfg *config.Config, cli *CLI) error {
	if cli.Token != "" {
		cfg.Token = cli.Token
	}
	if cli.BaseURL != "" {
		cfg.BaseURL = cli.BaseURL
	}
	if cli.Impersonate != "" {
		cfg.Impersonate = cli.Impersonate
	}
	if cli.Timeout > 0 {
		cfg.Timeout = config.Duration(cli.Timeout)
	}
	if cli.Debug {
		cfg.Debug = true
	}

	// Keep the browser profile between runs so challenge cookies survive.
	if cfg.Impersonate == session.ImpersonateBrowser && cfg.Browser.UserDataDir == "" {
		dir, err := paths.BrowserProfileDir()
		if err != nil {
			return err
		}
		if err := paths.EnsureDir(dir); err != nil {
			return err
		}
		cfg.Browser.UserDataDir = dir
	}

	if cfg.Token == "" {
		L_warn("no session token set; only public models will be visible")
	}
	return cfg.Validate()
}
