package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/klipy/klipy-go/internal/config"
	"github.com/klipy/klipy-go/internal/handlers"
	"github.com/klipy/klipy-go/internal/httpserver"
	"github.com/klipy/klipy-go/internal/middleware"
	"github.com/klipy/klipy-go/layout"
	"github.com/klipy/klipy-go/media"
	"github.com/klipy/klipy-go/service"
)

const usage = "expected command: serve, trending, search, categories, or rows"

// Run bootstraps the klipy preview server or runs a one-shot CLI command.
func Run(ctx context.Context, args []string) error {
	return run(ctx, args, os.Stdout)
}

func run(ctx context.Context, args []string, out io.Writer) error {
	if len(args) == 0 {
		return errors.New(usage)
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := newLogger(cfg.LogLevel, os.Stderr)
	slog.SetDefault(logger)

	switch args[0] {
	case "serve":
		return serve(ctx, cfg, logger)
	case "trending", "search", "categories", "rows":
		return runQuery(ctx, cfg, logger, args[0], args[1:], out)
	default:
		return fmt.Errorf("unknown command %q", args[0])
	}
}

func newLogger(level string, w io.Writer) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.TrimSpace(level))); err != nil {
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{AddSource: true, Level: lvl}))
}

func serve(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	deps, cleanup, err := buildDependencies(cfg, logger)
	if err != nil {
		return err
	}

	handler := handlers.NewRouter(deps)
	handler = middleware.RateLimit(middleware.NewIPRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst, 0))(handler)
	handler = middleware.RequestLogger(logger)(handler)

	srv := httpserver.New(cfg.AppPort, handler)

	logger.Info("starting http server", "port", cfg.AppPort, "base_url", cfg.BaseURL)

	srvErr := make(chan error, 1)
	go func() {
		srvErr <- srv.Start()
	}()

	signalCh := make(chan os.Signal, 1)
	signal.Notify(signalCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(signalCh)

	var runErr error
	select {
	case <-ctx.Done():
		logger.Info("context canceled, shutting down server")
	case sig := <-signalCh:
		logger.Info("received signal, shutting down", "signal", sig.String())
	case err := <-srvErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			runErr = err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), httpserver.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil && runErr == nil {
		runErr = err
	}
	if err := cleanup(shutdownCtx); err != nil {
		logger.Warn("tracking dispatcher did not drain", "error", err)
	}
	return runErr
}

type queryFlags struct {
	kind      string
	page      int
	perPage   int
	locale    string
	width     float64
	rowHeight float64
}

func parseQueryFlags(cmd string, args []string, cfg config.Config) (queryFlags, []string, error) {
	fs := pflag.NewFlagSet(cmd, pflag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var f queryFlags
	fs.StringVarP(&f.kind, "kind", "k", "gifs", "media kind: gifs, stickers or clips")
	fs.IntVarP(&f.page, "page", "p", 1, "page number")
	fs.IntVar(&f.perPage, "per-page", service.DefaultPerPage, "items per page")
	fs.StringVar(&f.locale, "locale", service.DefaultLocale, "content locale")
	fs.Float64VarP(&f.width, "width", "w", 400, "viewport width for rows")
	fs.Float64Var(&f.rowHeight, "row-height", cfg.RowHeight, "target row height")

	if err := fs.Parse(args); err != nil {
		return f, nil, fmt.Errorf("%s: %w", cmd, err)
	}
	return f, fs.Args(), nil
}

func kindType(kind string) (media.Type, error) {
	switch strings.ToLower(kind) {
	case "gifs", "gif":
		return media.TypeGif, nil
	case "stickers", "sticker":
		return media.TypeSticker, nil
	case "clips", "clip":
		return media.TypeClip, nil
	default:
		return "", fmt.Errorf("unknown media kind %q", kind)
	}
}

func runQuery(ctx context.Context, cfg config.Config, logger *slog.Logger, cmd string, args []string, out io.Writer) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	flags, rest, err := parseQueryFlags(cmd, args, cfg)
	if err != nil {
		return err
	}
	kind, err := kindType(flags.kind)
	if err != nil {
		return err
	}

	sdk, err := newSDK(cfg, logger)
	if err != nil {
		return err
	}
	feed, err := sdk.ServiceFor(kind)
	if err != nil {
		return err
	}

	opts := []service.PageOption{service.WithPerPage(flags.perPage), service.WithLocale(flags.locale)}
	term := strings.TrimSpace(strings.Join(rest, " "))

	switch cmd {
	case "categories":
		categories, err := feed.Categories(ctx)
		if err != nil {
			return err
		}
		return writeJSON(out, categories)
	case "search":
		if term == "" {
			return errors.New("search: missing query")
		}
		res, err := feed.Search(ctx, term, flags.page, opts...)
		if err != nil {
			return err
		}
		return writeJSON(out, res)
	case "trending":
		res, err := feed.Trending(ctx, flags.page, opts...)
		if err != nil {
			return err
		}
		return writeJSON(out, res)
	default:
		var res media.PaginatedResult[media.Item]
		if term == "" {
			res, err = feed.Trending(ctx, flags.page, opts...)
		} else {
			res, err = feed.Search(ctx, term, flags.page, opts...)
		}
		if err != nil {
			return err
		}
		return writeRows(out, layout.Rows(res.Items, flags.rowHeight, flags.width))
	}
}

func writeJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeRows(out io.Writer, rows []layout.Row) error {
	for i, row := range rows {
		if _, err := fmt.Fprintf(out, "row %d\theight=%.1f\twidth=%.1f\titems=%s\n", i+1, row.RowHeight, row.RowWidth, row.ID()); err != nil {
			return err
		}
	}
	return nil
}
