package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/hanpama/graphmask/internal/eventbus"
	"github.com/hanpama/graphmask/internal/executor"
	"github.com/hanpama/graphmask/internal/logging"
	"github.com/hanpama/graphmask/internal/mask"
	"github.com/hanpama/graphmask/internal/otel"
	"github.com/hanpama/graphmask/internal/schema"
	"github.com/hanpama/graphmask/internal/server"

	"github.com/rs/zerolog"
)

const rootUsage = `graphmask — per-request schema visibility for GraphQL

USAGE:
  graphmask <command> [flags]

COMMANDS:
  serve            Run an HTTP GraphQL endpoint with visibility masking
  print            Print the SDL a caller with the given role would see
  help             Show help for any command
`

const serveUsage = `serve FLAGS:
  -schema.file <file>        GraphQL SDL file (required)
  -data.file <file>          JSON object backing the root query fields
  -mask.tag <key>            Hide members tagged @meta(key: <key>)
  -mask.role-tag <key>       Metadata key naming the role a member requires
  -mask.role-header <name>   HTTP header carrying the caller role (default: X-Role)
  -mask.prune                Also hide types unreachable from the roots
  -server.addr <addr>        HTTP listen address (default: :8080)
  -server.pretty             Pretty-print JSON responses
  -server.timeout <duration> Per-request timeout, e.g. 10s (default: 10s)
  -server.cors-origin <o>    Allowed CORS origin. Repeatable
  -log.level <level>         zerolog level (default: info)
  -otel.endpoint <addr>      OTLP collector endpoint
  -otel.service <name>       OpenTelemetry service name (default: graphmask)
`

const printUsage = `print FLAGS:
  -schema.file <file>        GraphQL SDL file (required)
  -mask.tag <key>            Hide members tagged @meta(key: <key>)
  -mask.role-tag <key>       Metadata key naming the role a member requires
  -mask.role <role>          Role to evaluate the schema as
  -mask.prune                Also hide types unreachable from the roots
  -out <file>                Write SDL to file (default: stdout)
`

func main() {
	if err := run(os.Args[1:]); err != nil {
		log.Fatal(err)
	}
}

func run(args []string) error {
	global := flag.NewFlagSet("graphmask", flag.ContinueOnError)
	global.SetOutput(new(bytes.Buffer)) // silence automatic output
	if err := global.Parse(args); err != nil {
		// print usage on parse error
		fmt.Fprint(os.Stderr, rootUsage)
		return err
	}
	remaining := global.Args()
	if len(remaining) == 0 {
		fmt.Fprint(os.Stderr, rootUsage)
		return fmt.Errorf("missing command")
	}

	cmd := remaining[0]
	cmdArgs := remaining[1:]
	switch cmd {
	case "serve":
		return cmdServe(cmdArgs)
	case "print":
		return cmdPrint(cmdArgs)
	case "help":
		return cmdHelp(cmdArgs)
	default:
		fmt.Fprint(os.Stderr, rootUsage)
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func cmdHelp(args []string) error {
	if len(args) == 0 {
		fmt.Print(rootUsage)
		return nil
	}
	switch args[0] {
	case "serve":
		fmt.Print(serveUsage)
	case "print":
		fmt.Print(printUsage)
	default:
		return fmt.Errorf("unknown help topic %q", args[0])
	}
	return nil
}

type stringListFlag []string

func (s *stringListFlag) String() string { return "" }

func (s *stringListFlag) Set(v string) error {
	*s = append(*s, v)
	return nil
}

// roleKey carries the caller role extracted from the configured header.
type roleKey struct{}

func roleFromContext(ctx context.Context) string {
	role, _ := ctx.Value(roleKey{}).(string)
	return role
}

// buildPredicate combines the tag and role-tag flags into one predicate.
// A member tagged with the role-tag key is visible only to callers whose
// role matches the tag value.
func buildPredicate(tag, roleTag string) mask.Predicate {
	var preds []mask.Predicate
	if tag != "" {
		preds = append(preds, mask.HideTagged(tag))
	}
	if roleTag != "" {
		preds = append(preds, func(ctx context.Context, m schema.Member) bool {
			required, ok := m.MemberMetadata().Get(roleTag)
			if !ok {
				return false
			}
			return required != roleFromContext(ctx)
		})
	}
	switch len(preds) {
	case 0:
		return mask.HideNothing
	case 1:
		return preds[0]
	default:
		return mask.Any(preds...)
	}
}

func buildMask(tag, roleTag string, prune bool) *mask.Mask {
	var opts []mask.Option
	if prune {
		opts = append(opts, mask.WithPruneUnreachable())
	}
	return mask.New(buildPredicate(tag, roleTag), opts...)
}

func loadSchema(file string) (*schema.Schema, error) {
	if file == "" {
		return nil, fmt.Errorf("-schema.file is required")
	}
	src, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("read schema: %w", err)
	}
	sch, err := schema.BuildFromSDL(file, string(src))
	if err != nil {
		return nil, fmt.Errorf("build schema: %w", err)
	}
	return sch, nil
}

// loadRuntime backs the root query fields with values from a JSON object.
// Nested objects resolve through plain map access.
func loadRuntime(sch *schema.Schema, dataFile string) (executor.Runtime, error) {
	if dataFile == "" {
		return executor.NewMapRuntime(nil), nil
	}
	raw, err := os.ReadFile(dataFile)
	if err != nil {
		return nil, fmt.Errorf("read data: %w", err)
	}
	var data map[string]any
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("parse data: %w", err)
	}
	resolvers := make(map[string]executor.Resolver, len(data))
	for name, value := range data {
		resolvers[sch.QueryType+"."+name] = executor.ValueResolver(value)
	}
	return executor.NewMapRuntime(resolvers), nil
}

func cmdServe(args []string) error {
	schemaFile := ""
	dataFile := ""
	maskTag := ""
	roleTag := ""
	roleHeader := "X-Role"
	prune := false
	addr := ":8080"
	pretty := false
	timeout := 10 * time.Second
	logLevel := "info"
	otelEndpoint := ""
	otelService := "graphmask"
	var corsOrigins stringListFlag

	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	fs.SetOutput(new(bytes.Buffer))
	fs.StringVar(&schemaFile, "schema.file", schemaFile, "GraphQL SDL file")
	fs.StringVar(&dataFile, "data.file", dataFile, "JSON object backing the root query fields")
	fs.StringVar(&maskTag, "mask.tag", maskTag, "Hide members tagged with this metadata key")
	fs.StringVar(&roleTag, "mask.role-tag", roleTag, "Metadata key naming the role a member requires")
	fs.StringVar(&roleHeader, "mask.role-header", roleHeader, "HTTP header carrying the caller role")
	fs.BoolVar(&prune, "mask.prune", prune, "Also hide types unreachable from the roots")
	fs.StringVar(&addr, "server.addr", addr, "HTTP listen address")
	fs.BoolVar(&pretty, "server.pretty", pretty, "Pretty-print JSON responses")
	fs.DurationVar(&timeout, "server.timeout", timeout, "Per-request timeout")
	fs.Var(&corsOrigins, "server.cors-origin", "Allowed CORS origin")
	fs.StringVar(&logLevel, "log.level", logLevel, "zerolog level")
	fs.StringVar(&otelEndpoint, "otel.endpoint", otelEndpoint, "OTLP collector endpoint")
	fs.StringVar(&otelService, "otel.service", otelService, "OpenTelemetry service name")
	if err := fs.Parse(args); err != nil {
		fmt.Fprint(os.Stderr, serveUsage)
		return err
	}

	sch, err := loadSchema(schemaFile)
	if err != nil {
		fmt.Fprint(os.Stderr, serveUsage)
		return err
	}
	runtime, err := loadRuntime(sch, dataFile)
	if err != nil {
		return err
	}

	level, err := zerolog.ParseLevel(logLevel)
	if err != nil {
		return fmt.Errorf("parse log level: %w", err)
	}
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(level).With().Timestamp().Logger()

	eventbus.Use(eventbus.New())
	detach := logging.Attach(logger)
	defer detach()
	shutdown, err := otel.Setup(otelEndpoint, otelService)
	if err != nil {
		return fmt.Errorf("otel setup: %w", err)
	}
	defer func() { _ = shutdown(context.Background()) }()

	sopts := []server.Option{
		server.WithContextFunc(func(ctx context.Context, r *http.Request) context.Context {
			if role := r.Header.Get(roleHeader); role != "" {
				ctx = context.WithValue(ctx, roleKey{}, role)
			}
			return ctx
		}),
	}
	if pretty {
		sopts = append(sopts, server.WithPretty())
	}
	if timeout > 0 {
		sopts = append(sopts, server.WithTimeout(timeout))
	}
	if len(corsOrigins) > 0 {
		sopts = append(sopts, server.WithCORS(corsOrigins...))
	}

	h, err := server.New(runtime, sch, buildMask(maskTag, roleTag, prune), sopts...)
	if err != nil {
		return fmt.Errorf("server init: %w", err)
	}

	mux := http.NewServeMux()
	mux.Handle("/graphql", h)

	logger.Info().Str("addr", addr).Msg("GraphQL server listening")
	return http.ListenAndServe(addr, mux)
}

func cmdPrint(args []string) error {
	schemaFile := ""
	maskTag := ""
	roleTag := ""
	role := ""
	prune := false
	outFile := ""
	fs := flag.NewFlagSet("print", flag.ContinueOnError)
	fs.SetOutput(new(bytes.Buffer))
	fs.StringVar(&schemaFile, "schema.file", schemaFile, "GraphQL SDL file")
	fs.StringVar(&maskTag, "mask.tag", maskTag, "Hide members tagged with this metadata key")
	fs.StringVar(&roleTag, "mask.role-tag", roleTag, "Metadata key naming the role a member requires")
	fs.StringVar(&role, "mask.role", role, "Role to evaluate the schema as")
	fs.BoolVar(&prune, "mask.prune", prune, "Also hide types unreachable from the roots")
	fs.StringVar(&outFile, "out", outFile, "Write SDL to file")
	if err := fs.Parse(args); err != nil {
		fmt.Fprint(os.Stderr, printUsage)
		return err
	}

	sch, err := loadSchema(schemaFile)
	if err != nil {
		fmt.Fprint(os.Stderr, printUsage)
		return err
	}

	ctx := context.Background()
	if role != "" {
		ctx = context.WithValue(ctx, roleKey{}, role)
	}
	view := buildMask(maskTag, roleTag, prune).View(ctx, sch)
	sdl := mask.RenderSDL(view)
	if outFile == "" {
		fmt.Print(sdl)
		return nil
	}
	return os.WriteFile(outFile, []byte(sdl), 0644)
}
