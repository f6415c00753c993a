// Command reportctl fetches portal reports from the terminal.
//
//	reportctl list
//	reportctl show --range last_month trial-balance
//	reportctl show -p as_of=2024-03-31 --format csv ar-aging > aging.csv
//	reportctl payback 42
//	reportctl watch --interval 30s work-order-costs
//
// Flags go before the report name.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"github.com/diewo77/erp-reports/auth"
	"github.com/diewo77/erp-reports/format"
	"github.com/diewo77/erp-reports/internal/api"
	"github.com/diewo77/erp-reports/internal/catalog"
	"github.com/diewo77/erp-reports/internal/config"
	"github.com/diewo77/erp-reports/internal/query"
	"github.com/diewo77/erp-reports/internal/services"
)

func main() {
	_ = godotenv.Load()
	if err := newApp(config.Load(), os.Stdout).Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "reportctl:", err)
		os.Exit(1)
	}
}

// env is what every command needs, built once in Before.
type env struct {
	svc  *services.ReportService
	f    *format.Formatter
	lang string
	out  io.Writer
}

func newApp(cfg *config.Config, out io.Writer) *cli.App {
	e := &env{out: out}
	return &cli.App{
		Name:      "reportctl",
		Usage:     "fetch ERP reports from the terminal",
		Writer:    out,
		ErrWriter: os.Stderr,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "api", Usage: "backend base URL", EnvVars: []string{"API_BASE_URL"}, Value: cfg.API.BaseURL},
			&cli.StringFlag{Name: "token", Usage: "backend bearer token", EnvVars: []string{"API_TOKEN"}, Value: cfg.API.Token},
			&cli.StringFlag{Name: "lang", Usage: "output language (en, th)", Value: "en"},
			&cli.DurationFlag{Name: "timeout", Value: cfg.API.Timeout},
			&cli.BoolFlag{Name: "verbose", Aliases: []string{"v"}, Usage: "log API requests"},
		},
		Before: func(c *cli.Context) error {
			level := slog.LevelWarn
			if c.Bool("verbose") {
				level = slog.LevelDebug
			}
			logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
			cat, err := catalog.Default()
			if err != nil {
				return err
			}
			loc := cfg.Locale.Location()
			client := api.New(c.String("api"), c.Duration("timeout"), logger)
			e.svc = services.NewReportService(client, cat, query.NewCache(cfg.Cache.TTL), nil, logger, services.Options{
				TTL:      cfg.Cache.TTL,
				Location: loc,
			})
			e.f = format.New(cfg.Locale.Lang, cfg.Locale.Currency, cfg.Locale.CurrencySymbol).WithLocation(loc)
			e.lang = c.String("lang")
			return nil
		},
		Commands: []*cli.Command{
			{
				Name:   "list",
				Usage:  "list available reports",
				Action: e.list,
			},
			{
				Name:      "show",
				Usage:     "fetch one report",
				ArgsUsage: "<report>",
				Flags:     reportFlags(),
				Action:    e.show,
			},
			{
				Name:      "payback",
				Usage:     "cumulative cash flow of a solar proposal",
				ArgsUsage: "<proposal id>",
				Flags:     []cli.Flag{formatFlag()},
				Action:    e.payback,
			},
			{
				Name:      "watch",
				Usage:     "refetch a report periodically and print it when it changes",
				ArgsUsage: "<report>",
				Flags: append(reportFlags(),
					&cli.DurationFlag{Name: "interval", Value: time.Minute},
				),
				Action: e.watch,
			},
		},
	}
}

func formatFlag() cli.Flag {
	return &cli.StringFlag{Name: "format", Aliases: []string{"o"}, Value: "table", Usage: "table, json or csv"}
}

func reportFlags() []cli.Flag {
	return []cli.Flag{
		formatFlag(),
		&cli.StringFlag{Name: "range", Usage: "quick range, e.g. this_month, last_quarter, last_30_days"},
		&cli.StringFlag{Name: "start", Usage: "start date YYYY-MM-DD"},
		&cli.StringFlag{Name: "end", Usage: "end date YYYY-MM-DD"},
		&cli.StringSliceFlag{Name: "param", Aliases: []string{"p"}, Usage: "extra filter as name=value"},
	}
}

// ctx carries the token the backend expects and stops on Ctrl-C.
func (e *env) ctx(c *cli.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	return auth.WithToken(ctx, c.String("token")), cancel
}

// filters turns the command flags into the query string a report page takes.
func filters(c *cli.Context) (url.Values, error) {
	q := url.Values{}
	for flag, name := range map[string]string{"range": "range", "start": "start_date", "end": "end_date"} {
		if v := c.String(flag); v != "" {
			q.Set(name, v)
		}
	}
	for _, p := range c.StringSlice("param") {
		k, v, ok := strings.Cut(p, "=")
		if !ok || strings.TrimSpace(k) == "" {
			return nil, fmt.Errorf("param %q: want name=value", p)
		}
		q.Set(strings.TrimSpace(k), strings.TrimSpace(v))
	}
	return q, nil
}

func (e *env) list(c *cli.Context) error {
	return writeCatalog(e.out, e.svc.Catalog().All(), e.lang)
}

func (e *env) load(c *cli.Context) (services.Result, error) {
	name := c.Args().First()
	if name == "" {
		return services.Result{}, cli.Exit("missing report name; see reportctl list", 2)
	}
	q, err := filters(c)
	if err != nil {
		return services.Result{}, cli.Exit(err.Error(), 2)
	}
	ctx, cancel := e.ctx(c)
	defer cancel()
	res, err := e.svc.Load(ctx, name, q)
	if errors.Is(err, catalog.ErrUnknownReport) {
		return res, cli.Exit(fmt.Sprintf("unknown report %q", name), 2)
	}
	return res, err
}

func (e *env) show(c *cli.Context) error {
	res, err := e.load(c)
	if err != nil {
		return err
	}
	return e.print(c.String("format"), res)
}

func (e *env) payback(c *cli.Context) error {
	var id int64
	if _, err := fmt.Sscan(c.Args().First(), &id); err != nil || id <= 0 {
		return cli.Exit("proposal id must be a positive number", 2)
	}
	ctx, cancel := e.ctx(c)
	defer cancel()
	res := e.svc.LoadPayback(ctx, id)
	return e.print(c.String("format"), res.Result)
}

// watch keeps one query for the report. A tick that fires while the previous
// fetch is still running supersedes it, so a slow response never overwrites
// a newer one.
func (e *env) watch(c *cli.Context) error {
	interval := c.Duration("interval")
	if interval <= 0 {
		return cli.Exit("interval must be positive", 2)
	}
	name := c.Args().First()
	if name == "" {
		return cli.Exit("missing report name; see reportctl list", 2)
	}
	if _, err := e.svc.Catalog().Lookup(name); err != nil {
		return cli.Exit(fmt.Sprintf("unknown report %q", name), 2)
	}
	q, err := filters(c)
	if err != nil {
		return cli.Exit(err.Error(), 2)
	}
	ctx, cancel := e.ctx(c)
	defer cancel()

	qry := query.New[services.Result](query.NewCache(0), 0, nil)
	states := make(chan query.State[services.Result], 1)
	var seq int
	start := func() {
		seq++
		key := query.Key(name, strconv.Itoa(seq))
		go func() {
			st := qry.Run(ctx, key, func(ctx context.Context) (services.Result, error) {
				return e.svc.Load(ctx, name, q)
			})
			if errors.Is(st.Err, query.ErrSuperseded) {
				return
			}
			select {
			case states <- st:
			case <-ctx.Done():
			}
		}()
	}

	var last string
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	start()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			_ = e.svc.Invalidate(name)
			start()
		case st := <-states:
			if st.Err != nil {
				if ctx.Err() != nil {
					return nil
				}
				return st.Err
			}
			var buf strings.Builder
			if err := writeResult(&buf, c.String("format"), st.Data, e.f, e.lang); err != nil {
				return err
			}
			if s := buf.String(); s != last {
				last = s
				fmt.Fprintf(e.out, "# %s %s\n", name, time.Now().Format(time.TimeOnly))
				io.WriteString(e.out, s)
			}
		}
	}
}

func (e *env) print(formatName string, res services.Result) error {
	if err := writeResult(e.out, formatName, res, e.f, e.lang); err != nil {
		return err
	}
	if !res.OK() {
		return cli.Exit(res.Message, 1)
	}
	return nil
}
