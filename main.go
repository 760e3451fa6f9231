package main

import (
	"context"
	"flag"
	"log"
	"os"

	"github.com/google/subcommands"
	"github.com/nrtkbb/fnbundle/cmd/bundle"
	"github.com/nrtkbb/fnbundle/cmd/merge"
	"github.com/nrtkbb/fnbundle/cmd/migrate"
	"github.com/nrtkbb/fnbundle/cmd/runs"
	"github.com/nrtkbb/fnbundle/cmd/serve"
	"github.com/nrtkbb/fnbundle/cmd/testdata"
	"github.com/nrtkbb/fnbundle/cmd/version"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
)

// initTracer installs a tracer provider exporting spans to stderr, keeping
// stdout free for bundle diagnostics.
func initTracer() (*sdktrace.TracerProvider, error) {
	exporter, err := stdouttrace.New(
		stdouttrace.WithWriter(os.Stderr),
		stdouttrace.WithPrettyPrint(),
	)
	if err != nil {
		return nil, err
	}

	resource := resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName("fnbundle"),
		semconv.ServiceVersion(version.Version),
	)

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(resource),
	)
	otel.SetTracerProvider(tp)

	return tp, nil
}

func run() int {
	trace := flag.Bool("trace", false, "export OpenTelemetry spans to stderr")

	subcommands.Register(subcommands.HelpCommand(), "")
	subcommands.Register(subcommands.FlagsCommand(), "")
	subcommands.Register(subcommands.CommandsCommand(), "")
	subcommands.Register(&bundle.Command{}, "")
	subcommands.Register(&runs.Command{}, "catalog")
	subcommands.Register(&serve.Command{}, "catalog")
	subcommands.Register(&migrate.Command{}, "catalog")
	subcommands.Register(&merge.Command{}, "catalog")
	subcommands.Register(&testdata.Command{}, "")
	subcommands.Register(&version.Command{}, "")

	flag.Parse()
	if flag.NArg() == 0 {
		flag.Usage()
		return int(subcommands.ExitUsageError)
	}

	if *trace {
		tp, err := initTracer()
		if err != nil {
			log.Printf("Failed to initialize tracer: %v", err)
			return int(subcommands.ExitFailure)
		}
		defer func() {
			if err := tp.Shutdown(context.Background()); err != nil {
				log.Printf("Error shutting down tracer provider: %v", err)
			}
		}()
	}

	return int(subcommands.Execute(context.Background()))
}

func main() {
	os.Exit(run())
}
