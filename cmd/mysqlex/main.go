// Command mysqlex runs SQL against MySQL using the mysqlex error classification and
// lock contention retries.
package main

import (
	"context"
	"fmt"
	"io"
	"log" //nolint:depguard // non-o11y log is allowed for a top-level fatal
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"

	"github.com/circleci/mysqlex/config/o11y"
	"github.com/circleci/mysqlex/config/secret"
	"github.com/circleci/mysqlex/db"
	"github.com/circleci/mysqlex/mysqlerr"
	ox "github.com/circleci/mysqlex/o11y"
	"github.com/circleci/mysqlex/retry"
)

var Version = "dev"

type cli struct {
	O11yStatsd string `name:"o11y-statsd" env:"O11Y_STATSD" help:"Address to send statsd metrics, metrics are dropped when empty"`
	O11yDebug  bool   `name:"o11y-debug" env:"O11Y_DEBUG" help:"Log debug events, such as each retry"`
	O11yFormat string `name:"o11y-format" env:"O11Y_FORMAT" default:"json" enum:"json,text,none" help:"Format of the span log written to stderr"`

	HoneycombEnabled bool          `env:"HONEYCOMB_ENABLED" help:"Send spans to honeycomb as well as the span log"`
	HoneycombDataset string        `env:"HONEYCOMB_DATASET" default:"mysqlex"`
	HoneycombKey     secret.String `env:"HONEYCOMB_KEY"`
	RollbarToken     secret.String `env:"ROLLBAR_TOKEN" help:"Report panics to rollbar when set"`
	RollbarEnv       string        `env:"ROLLBAR_ENV" default:"production"`

	DBHost string        `env:"DB_HOST" default:"localhost"`
	DBPort int           `env:"DB_PORT" default:"3306"`
	DBUser string        `env:"DB_USER" default:"root"`
	DBPass secret.String `env:"DB_PASS"`
	DBName string        `env:"DB_NAME" default:""`
	DBTLS  bool          `name:"db-tls" env:"DB_TLS" help:"Connect using TLS"`

	Exec  execCmd  `cmd:"" help:"Run a statement in a transaction, retrying it on lock contention"`
	Ping  pingCmd  `cmd:"" help:"Check the database is reachable"`
	Kinds kindsCmd `cmd:"" help:"List the MySQL error codes that are classified"`
}

func (c *cli) dbConfig() db.Config {
	return db.Config{
		Host: c.DBHost,
		Port: c.DBPort,
		User: c.DBUser,
		Pass: c.DBPass,
		Name: c.DBName,
		TLS:  c.DBTLS,
	}
}

// env carries what the commands need at run time
type env struct {
	ctx context.Context
	cli *cli
	out io.Writer
}

func main() {
	err := run(os.Args[1:], os.Stdout, os.Stderr)
	if err != nil {
		log.Fatal("Unexpected Error: ", err)
	}
}

func parse(args []string, stdout, stderr io.Writer) (*cli, *kong.Context, error) {
	c := &cli{}
	parser, err := kong.New(c,
		kong.Name("mysqlex"),
		kong.Description("Run SQL against MySQL with typed errors and lock retries."),
		kong.Writers(stdout, stderr),
	)
	if err != nil {
		return nil, nil, err
	}
	kctx, err := parser.Parse(args)
	if err != nil {
		return nil, nil, err
	}
	return c, kctx, nil
}

func run(args []string, stdout, stderr io.Writer) (err error) {
	c, kctx, err := parse(args, stdout, stderr)
	if err != nil {
		return err
	}

	// an interrupt cancels any statement in flight and the wait between retries
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ctx, cleanup, err := o11y.Setup(ctx, o11y.Config{
		Statsd:         c.O11yStatsd,
		StatsNamespace: "mysqlex.",
		Service:        "mysqlex",
		Version:        Version,
		Mode:           kctx.Command(),
		Debug:          c.O11yDebug,
		Format:         c.O11yFormat,
		Writer:         stderr,

		HoneycombEnabled: c.HoneycombEnabled,
		HoneycombDataset: c.HoneycombDataset,
		HoneycombKey:     c.HoneycombKey,
		RollbarToken:     c.RollbarToken,
		RollbarEnv:       c.RollbarEnv,
	})
	if err != nil {
		return err
	}
	defer cleanup(ctx)

	ctx, span := ox.StartSpan(ctx, "main: run")
	defer ox.End(span, &err)

	return kctx.Run(&env{ctx: ctx, cli: c, out: stdout})
}

type execCmd struct {
	SQL        string        `arg:"" name:"sql" help:"The statement to run"`
	MaxRetries int           `name:"max-retries" default:"3" help:"Retries after the first attempt"`
	Wait       time.Duration `name:"wait" default:"5s" help:"Pause between attempts"`
}

func (e *execCmd) policy() retry.Policy {
	p := retry.Default()
	p.Name = "exec"
	p.MaxRetries = e.MaxRetries
	p.Wait = e.Wait
	return p
}

func (e *execCmd) Run(r *env) (err error) {
	sqlDB, err := db.New(r.ctx, "mysqlex", "mysqlex", r.cli.dbConfig())
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	var rows int64
	err = db.NewTxManager(sqlDB).WithRetryTransaction(r.ctx, e.policy(), func(ctx context.Context, q db.Querier) error {
		ctx, span := db.Span(ctx, "cli", "exec")
		var err error
		defer ox.End(span, &err)

		res, err := q.ExecContext(ctx, e.SQL)
		if err != nil {
			return err
		}
		rows, err = res.RowsAffected()
		return err
	})
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(r.out, "rows affected: %d\n", rows)
	return err
}

type pingCmd struct{}

func (p *pingCmd) Run(r *env) error {
	sqlDB, err := db.New(r.ctx, "mysqlex", "mysqlex", r.cli.dbConfig())
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	h := &db.HealthCheck{Name: "mysqlex-db", DB: sqlDB}
	version, err := h.Check(r.ctx)
	if err != nil {
		return err
	}

	metrics := ox.FromContext(r.ctx).MetricsProvider()
	for name, v := range h.Gauges(r.ctx) {
		_ = metrics.Gauge(h.MetricName()+"."+name, v, nil, 1)
	}
	_, err = fmt.Fprintf(r.out, "ok: mysql %s\n", version)
	return err
}

type kindsCmd struct{}

func (k *kindsCmd) Run(r *env) error {
	for _, kind := range mysqlerr.Kinds() {
		if _, err := fmt.Fprintf(r.out, "%d\t%s\n", kind.Code(), kind); err != nil {
			return err
		}
	}
	return nil
}
