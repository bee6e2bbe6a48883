// Package o11y sets up the o11y provider used by mysqlex binaries.
package o11y

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/DataDog/datadog-go/statsd"
	"github.com/rollbar/rollbar-go"

	"github.com/circleci/mysqlex/config/secret"
	"github.com/circleci/mysqlex/o11y"
	"github.com/circleci/mysqlex/o11y/honeycomb"
)

type Config struct {
	// Statsd is the address of a statsd agent, metrics are discarded when empty
	Statsd           string
	RollbarToken     secret.String
	RollbarEnv       string
	HoneycombEnabled bool
	HoneycombDataset string
	HoneycombKey     secret.String
	SampleTraces     bool
	SampleRates      map[string]int
	// Format of the span log written to Writer: json (default), text or none
	Format         string
	StatsNamespace string
	Version        string
	Service        string
	// Writer receives the span log, defaulting to stderr
	Writer io.Writer

	// Optional
	Mode                    string
	Debug                   bool
	RollbarDisabled         bool
	StatsdTelemetryDisabled bool
}

// Setup is the entrypoint to initialise the o11y system.
//
// The returned func must be called to flush the span log and close the metrics client.
func Setup(ctx context.Context, o Config) (context.Context, func(context.Context), error) {
	honeyConfig, err := honeyComb(o)
	if err != nil {
		return nil, nil, err
	}

	hostname, _ := os.Hostname()

	if o.Statsd == "" {
		honeyConfig.Metrics = &statsd.NoOpClient{}
	} else {
		tags := []string{
			"service:" + o.Service,
			"version:" + o.Version,
			"hostname:" + hostname,
		}
		if o.Mode != "" {
			tags = append(tags, "mode:"+o.Mode)
		}

		statsdOpts := []statsd.Option{
			statsd.WithNamespace(o.StatsNamespace),
			statsd.WithTags(tags),
		}
		if o.StatsdTelemetryDisabled {
			statsdOpts = append(statsdOpts, statsd.WithoutTelemetry())
		}

		stats, err := statsd.New(o.Statsd, statsdOpts...)
		if err != nil {
			return nil, nil, err
		}
		honeyConfig.Metrics = stats
	}

	provider := honeycomb.New(honeyConfig)
	provider.AddGlobalField("service", o.Service)
	provider.AddGlobalField("version", o.Version)
	if o.Mode != "" {
		provider.AddGlobalField("mode", o.Mode)
	}

	if o.RollbarToken != "" {
		client := rollbar.NewAsync(o.RollbarToken.Raw(), o.RollbarEnv, o.Version, hostname, "")
		client.SetEnabled(!o.RollbarDisabled)
		provider = rollbarProvider{
			Provider:      provider,
			rollbarClient: client,
		}
	}

	return o11y.WithProvider(ctx, provider), provider.Close, nil
}

// rollbarProvider lets o11y.HandlePanic report panics to rollbar
type rollbarProvider struct {
	o11y.Provider
	rollbarClient *rollbar.Client
}

func (p rollbarProvider) Close(ctx context.Context) {
	p.Provider.Close(ctx)
	_ = p.rollbarClient.Close()
}

func (p rollbarProvider) RollBarClient() *rollbar.Client {
	return p.rollbarClient
}

func honeyComb(o Config) (honeycomb.Config, error) {
	conf := honeycomb.Config{
		Dataset:      o.HoneycombDataset,
		Key:          o.HoneycombKey.Raw(),
		Format:       o.Format,
		SendTraces:   o.HoneycombEnabled,
		SampleTraces: o.SampleTraces,
		SampleKeyFunc: func(fields map[string]interface{}) string {
			// spans are named after the unit of work, eg "retry: exec" or "db: widgets.update"
			return fmt.Sprintf("%v %v", fields["name"], fields["result"])
		},
		SampleRates: o.SampleRates,
		Writer:      o.Writer,
		ServiceName: o.Service,
		Debug:       o.Debug,
	}
	return conf, conf.Validate()
}
