package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/jaeger"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/sanLimbu/taskflow/internal/client"
)

func main() {
	var (
		address string
		trace   bool
	)

	rootCmd := &cobra.Command{
		Use:          "tasks",
		Short:        "Command line client of the tasks dashboard",
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVarP(&address, "address", "a", "http://127.0.0.1:9234", "server address")
	rootCmd.PersistentFlags().BoolVar(&trace, "trace", false, "print traces to stdout and send them to Jaeger")

	newClient := func() *client.Client {
		return client.New(address, client.WithHTTPClient(&http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
			Timeout:   10 * time.Second,
		}))
	}

	rootCmd.PersistentPreRunE = func(_ *cobra.Command, _ []string) error {
		if !trace {
			return nil
		}

		return initTracer()
	}

	rootCmd.PersistentPostRun = func(_ *cobra.Command, _ []string) {
		if tp, ok := otel.GetTracerProvider().(*sdktrace.TracerProvider); ok {
			_ = tp.Shutdown(context.Background())
		}
	}

	rootCmd.AddCommand(
		listCmd(newClient),
		statsCmd(newClient),
		completeCmd(newClient, "complete", true),
		completeCmd(newClient, "reopen", false),
		createCmd(newClient),
		searchCmd(newClient),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// initTracer initializes OpenTelemetry tracing with Jaeger and stdout exporters.
func initTracer() error {
	jaegerEndpoint := os.Getenv("JAEGER_ENDPOINT")
	if jaegerEndpoint == "" {
		jaegerEndpoint = "http://localhost:14268/api/traces"
	}

	jaegerExporter, err := jaeger.New(jaeger.WithCollectorEndpoint(jaeger.WithEndpoint(jaegerEndpoint)))
	if err != nil {
		return fmt.Errorf("jaeger.New: %w", err)
	}

	stdoutExporter, err := stdouttrace.New(stdouttrace.WithPrettyPrint())
	if err != nil {
		return fmt.Errorf("stdouttrace.New: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
		sdktrace.WithBatcher(stdoutExporter),
		sdktrace.WithBatcher(jaegerExporter),
	)

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(propagation.TraceContext{}, propagation.Baggage{}))

	return nil
}
