package o11y

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"gotest.tools/v3/assert"
	"gotest.tools/v3/assert/cmp"
	"gotest.tools/v3/poll"

	"github.com/circleci/mysqlex/config/secret"
	"github.com/circleci/mysqlex/o11y"
	"github.com/circleci/mysqlex/testing/fakestatsd"
)

func TestO11Y_SecretRedacted(t *testing.T) {
	// confirm that the span log uses the json marshaller and that we dont see secrets
	buf := bytes.Buffer{}
	ctx, cleanup, err := Setup(context.Background(), Config{
		Service: "test-service",
		Writer:  &buf,
	})
	assert.Assert(t, err)

	_, span := o11y.StartSpan(ctx, "secret test")
	span.AddField("secret", secret.String("super-secret"))
	span.End()
	cleanup(ctx)

	assert.Check(t, !strings.Contains(buf.String(), "super-secret"), buf.String())
	assert.Check(t, cmp.Contains(buf.String(), "REDACTED"))
	assert.Check(t, cmp.Contains(buf.String(), `"service":"test-service"`))
}

func TestSetup_DoesNotError(t *testing.T) {
	ctx := context.Background()
	ctx, cleanup, err := Setup(ctx, Config{
		Statsd:                  "127.0.0.1:8125",
		Version:                 "1.2.3",
		Service:                 "test-service",
		StatsNamespace:          "test.service.",
		Mode:                    "banana",
		Debug:                   true,
		StatsdTelemetryDisabled: true,
		Writer:                  &bytes.Buffer{},
	})
	assert.Assert(t, err)
	o11y.Log(ctx, "hello")
	cleanup(ctx)
}

func TestSetup_SendsSpanMetrics(t *testing.T) {
	s := fakestatsd.New(t)

	ctx, cleanup, err := Setup(context.Background(), Config{
		Statsd:                  s.Addr(),
		StatsNamespace:          "mysqlex.",
		Version:                 "1.2.3",
		Service:                 "test-service",
		StatsdTelemetryDisabled: true,
		Writer:                  &bytes.Buffer{},
	})
	assert.Assert(t, err)

	_, span := o11y.StartSpan(ctx, "db: widgets.update")
	span.AddRawField("db.query_name", "update")
	span.RecordMetric(o11y.Timing("db.query", "db.query_name", "result"))
	o11y.End(span, nil)
	cleanup(ctx)

	poll.WaitOn(t, func(t poll.LogT) poll.Result {
		if _, ok := s.Find("mysqlex.db.query"); !ok {
			return poll.Continue("waiting for db.query in %v", s.Metrics())
		}
		return poll.Success()
	})

	m, _ := s.Find("mysqlex.db.query")
	assert.Check(t, cmp.Contains(m.Tags, "db.query_name:update"))
	assert.Check(t, cmp.Contains(m.Tags, "result:success"))
	assert.Check(t, cmp.Contains(m.Tags, "service:test-service"))
}

func TestSetup_Rollbar(t *testing.T) {
	ctx, cleanup, err := Setup(context.Background(), Config{
		Service:         "test-service",
		RollbarToken:    "the-token",
		RollbarEnv:      "test",
		RollbarDisabled: true,
		Writer:          &bytes.Buffer{},
	})
	assert.Assert(t, err)
	defer cleanup(ctx)

	p, ok := o11y.FromContext(ctx).(rollbarProvider)
	assert.Assert(t, ok)
	assert.Check(t, p.RollBarClient() != nil)

	_, span := o11y.StartSpan(ctx, "panics")
	err = o11y.HandlePanic(ctx, span, "oh no")
	span.End()
	assert.Check(t, cmp.ErrorContains(err, "oh no"))
}

func TestSetup_InvalidConfig(t *testing.T) {
	_, _, err := Setup(context.Background(), Config{Format: "xml"})
	assert.Check(t, cmp.ErrorContains(err, "xml"))

	_, _, err = Setup(context.Background(), Config{HoneycombEnabled: true})
	assert.Check(t, cmp.ErrorContains(err, "honeycomb_key"))
}

func TestSetup_TextFormat(t *testing.T) {
	buf := bytes.Buffer{}
	ctx, cleanup, err := Setup(context.Background(), Config{
		Service: "test-service",
		Format:  "text",
		Writer:  &buf,
	})
	assert.Assert(t, err)

	o11y.Log(ctx, "hello", o11y.Field("who", "world"))
	cleanup(ctx)

	assert.Check(t, cmp.Contains(buf.String(), "hello app.who=world"))
}
