package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"

	"github.com/hengadev/tagxml"
	"github.com/hengadev/tagxml/internal/monitoring"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	if err := loadEnvironment(".env"); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	var err error
	command := os.Args[1]
	switch command {
	case "demo":
		err = demoCommand(ctx, os.Args[2:], os.Stdout)
	case "tokens":
		err = tokensCommand(ctx, os.Args[2:], os.Stdout)
	case "inspect":
		err = inspectCommand(ctx, os.Args[2:], os.Stdout)
	case "init":
		err = initCommand(os.Args[2:], os.Stdout)
	case "version":
		versionCommand(os.Stdout)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s failed: %v\n", command, err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprintf(os.Stderr, "Usage: %s <command> [options]\n", os.Args[0])
	fmt.Fprintf(os.Stderr, "\nCommands:\n")
	fmt.Fprintf(os.Stderr, "  demo      Write students to the store and read them back\n")
	fmt.Fprintf(os.Stderr, "  tokens    Print the token stream of a stored document\n")
	fmt.Fprintf(os.Stderr, "  inspect   Print the records of a stored document\n")
	fmt.Fprintf(os.Stderr, "  init      Initialize configuration file\n")
	fmt.Fprintf(os.Stderr, "  version   Show version information\n")
	fmt.Fprintf(os.Stderr, "\nRun '%s <command> -h' for help on a specific command.\n", os.Args[0])
}

// session holds what every store-backed command needs.
type session struct {
	logger *zap.Logger
	store  tagxml.Store
	close  func() error
}

func openSession(ctx context.Context, configPath string) (*session, error) {
	config, err := resolveConfig(configPath)
	if err != nil {
		return nil, err
	}
	logger, err := newLogger(config.Log)
	if err != nil {
		return nil, err
	}
	store, closeStore, err := openStore(ctx, config.Store)
	if err != nil {
		return nil, err
	}
	logger.Debug("store opened", zap.String("backend", config.Store.Backend))
	return &session{logger: logger, store: store, close: closeStore}, nil
}

func (s *session) Close() error {
	s.logger.Sync()
	return s.close()
}

func demoCommand(ctx context.Context, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("demo", flag.ContinueOnError)
	configPath := fs.String("config", "tagxml.yaml", "Path to configuration file")
	name := fs.String("name", "students", "Base name of the document")
	count := fs.Int("count", 10, "Number of students to write")
	showMetrics := fs.Bool("metrics", false, "Print collected metrics")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *count < 1 {
		return fmt.Errorf("count must be at least 1")
	}

	sess, err := openSession(ctx, *configPath)
	if err != nil {
		return err
	}
	defer sess.Close()

	collector := monitoring.NewPrometheusMetricsCollector()
	s, err := newDemoSerializer(sess.store, sess.logger, collector)
	if err != nil {
		return err
	}

	result, err := runDemo(ctx, s, *name, *count)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Results correctly written on %s (%d records, %d bytes, %s)\n",
		result.Write.Key, result.Write.Records, result.Write.Bytes, result.Write.Digest)
	fmt.Fprintf(out, "Read back %d records, all equal\n", result.Read)

	if *showMetrics {
		families, err := collector.Registry.Gather()
		if err != nil {
			return fmt.Errorf("failed to gather metrics: %w", err)
		}
		writeMetrics(out, families)
	}
	return nil
}

func loadDocument(ctx context.Context, name string, args []string) ([]byte, error) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	configPath := fs.String("config", "tagxml.yaml", "Path to configuration file")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() != 1 {
		return nil, fmt.Errorf("usage: %s [-config file] <key>", name)
	}

	sess, err := openSession(ctx, *configPath)
	if err != nil {
		return nil, err
	}
	defer sess.Close()
	return sess.store.Get(ctx, fs.Arg(0))
}

func tokensCommand(ctx context.Context, args []string, out io.Writer) error {
	doc, err := loadDocument(ctx, "tokens", args)
	if err != nil {
		return err
	}
	i := 0
	for tok := range tagxml.NewTokenizer(doc).All() {
		fmt.Fprintf(out, "%4d  %s\n", i, tok)
		i++
	}
	return nil
}

func inspectCommand(ctx context.Context, args []string, out io.Writer) error {
	doc, err := loadDocument(ctx, "inspect", args)
	if err != nil {
		return err
	}
	records, err := tagxml.ScanRecords(doc)
	if err != nil {
		return err
	}

	class := tagxml.Tokenize(doc)[0]
	fmt.Fprintf(out, "Class %s, %d records\n", class, len(records))
	for i, record := range records {
		fmt.Fprintf(out, "  #%d\n", i)
		for _, entry := range record.Entries {
			fmt.Fprintf(out, "    %s (%s) = %q\n", entry.Name, entry.Type, entry.Value)
		}
	}
	return nil
}

func initCommand(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("init", flag.ContinueOnError)
	configPath := fs.String("config", "tagxml.yaml", "Path of the configuration file to create")
	force := fs.Bool("force", false, "Overwrite existing configuration file")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if !*force {
		if _, err := os.Stat(*configPath); err == nil {
			return fmt.Errorf("configuration file %s already exists, use -force to overwrite", *configPath)
		}
	}
	if err := SaveConfig(DefaultConfig(), *configPath); err != nil {
		return err
	}
	fmt.Fprintf(out, "Configuration file created at %s\n", *configPath)
	return nil
}

func versionCommand(out io.Writer) {
	fmt.Fprintln(out, tagxml.VersionInfo())
	fmt.Fprintln(out, "Struct tag driven XML serializer")
	fmt.Fprintln(out, "")
	fmt.Fprintln(out, "Supported types: int, float, boolean, String")
	fmt.Fprintln(out, "Supported stores: dir, s3, sqlite, vault")
}
