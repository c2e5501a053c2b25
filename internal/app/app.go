package app

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"wikiextract/internal/config"
	"wikiextract/internal/executor"
	"wikiextract/internal/httpclient"
	"wikiextract/internal/logging"
	"wikiextract/internal/wiki"
)

// Version is reported by -version and sent in the default User-Agent.
var Version = "1.0.0"

// Define common errors for the application layer.
var (
	ErrUsage       = errors.New("usage error")
	ErrMissingArgs = errors.New("missing search text")
	ErrConfig      = errors.New("configuration error")
)

// --- Interfaces for Testability ---

// configLoader defines the interface for loading configuration.
type configLoader interface {
	Load(filename string) (*config.Config, error)
}

// fetcherFactory builds the Fetcher that performs the lookup request.
type fetcherFactory interface {
	New(cfg *config.Config) (wiki.Fetcher, error)
}

// --- Default Implementations ---

type defaultConfigLoader struct{}

func (l *defaultConfigLoader) Load(filename string) (*config.Config, error) {
	return config.LoadConfig(filename)
}

type defaultFetcherFactory struct{}

func (f *defaultFetcherFactory) New(cfg *config.Config) (wiki.Fetcher, error) {
	client, err := httpclient.NewClient(cfg)
	if err != nil {
		return nil, err
	}
	return executor.New(client), nil
}

// --- AppRunner ---

// AppRunner encapsulates the application's execution logic and dependencies.
type AppRunner struct {
	configLoader   configLoader
	fetcherFactory fetcherFactory
	stdout         io.Writer
	stderr         io.Writer
	lookupEnv      wiki.LookupEnvFunc
}

// AppRunnerOpts allows configuring the AppRunner's dependencies.
// Nil fields fall back to the real implementations and process streams.
type AppRunnerOpts struct {
	ConfigLoader   configLoader
	FetcherFactory fetcherFactory
	Stdout         io.Writer
	Stderr         io.Writer
	LookupEnv      wiki.LookupEnvFunc
}

// NewAppRunner creates a new instance of the application runner with default dependencies.
func NewAppRunner() *AppRunner {
	return NewAppRunnerWithOpts(AppRunnerOpts{})
}

// NewAppRunnerWithOpts creates a new AppRunner allowing dependency injection.
func NewAppRunnerWithOpts(opts AppRunnerOpts) *AppRunner {
	a := &AppRunner{
		configLoader:   opts.ConfigLoader,
		fetcherFactory: opts.FetcherFactory,
		stdout:         opts.Stdout,
		stderr:         opts.Stderr,
		lookupEnv:      opts.LookupEnv,
	}
	if a.configLoader == nil {
		a.configLoader = &defaultConfigLoader{}
	}
	if a.fetcherFactory == nil {
		a.fetcherFactory = &defaultFetcherFactory{}
	}
	if a.stdout == nil {
		a.stdout = os.Stdout
	}
	if a.stderr == nil {
		a.stderr = os.Stderr
	}
	if a.lookupEnv == nil {
		a.lookupEnv = os.LookupEnv
	}
	return a
}

// usageText defines the command-line help information.
const usageText = `wikiextract - print the introduction of a Wikipedia article

Usage:
  wikiextract [options] <text>

Options:
  -l, -lang string
        Language designation (default: first two letters of $LANG, else "en")
  -config string
        Optional YAML configuration file
  -loglevel string
        Logging level (none, error, warn, info, debug) (default "error")
  -version
        Print version and exit
  -help
        Show help

Examples:
  wikiextract "Rust (programming language)"
  wikiextract -l de Berlin
`

// Usage prints the command-line help information to the specified writer.
func (a *AppRunner) Usage(writer io.Writer) {
	fmt.Fprint(writer, usageText)
}

// Run parses command-line arguments, looks the phrase up and prints the
// extract to stdout. Every failure is reported on stderr before it is
// returned; the caller only has to turn a non-nil error into an exit status.
func (a *AppRunner) Run(args []string) error {
	fs := flag.NewFlagSet("wikiextract", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var lang string
	fs.StringVar(&lang, "lang", "", "Language designation")
	fs.StringVar(&lang, "l", "", "Language designation (shorthand)")
	configFile := fs.String("config", "", "Optional YAML configuration file")
	logLevelStr := fs.String("loglevel", logging.LevelName(logging.DefaultLevel), "Logging level")
	versionFlag := fs.Bool("version", false, "Print version")
	helpFlag := fs.Bool("help", false, "Show help")

	positional, err := parseInterleaved(fs, args)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			a.Usage(a.stderr)
			return nil
		}
		fmt.Fprintf(a.stderr, "%v\n\n", err)
		a.Usage(a.stderr)
		return fmt.Errorf("%w: %v", ErrUsage, err)
	}

	if *helpFlag {
		a.Usage(a.stderr)
		return nil
	}
	if *versionFlag {
		fmt.Fprintf(a.stdout, "wikiextract %s\n", Version)
		return nil
	}
	if len(positional) == 0 {
		a.Usage(a.stderr)
		return ErrMissingArgs
	}
	phrase := positional[0]

	logging.SetupLogging(*logLevelStr)
	if len(positional) > 1 {
		logging.Logf(logging.Warning, "Ignoring extra arguments %q; quote the search text to include them", positional[1:])
	}

	cfg := config.Default()
	if *configFile != "" {
		loaded, err := a.configLoader.Load(*configFile)
		if err != nil {
			fmt.Fprintln(a.stderr, err)
			return fmt.Errorf("%w: %v", ErrConfig, err)
		}
		cfg = loaded
		if !isFlagSet(fs, "loglevel") {
			logging.SetupLogging(cfg.Logging.Level)
		}
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = "wikiextract/" + Version
	}

	fetcher, err := a.fetcherFactory.New(cfg)
	if err != nil {
		fmt.Fprintln(a.stderr, err)
		return fmt.Errorf("%w: %v", ErrConfig, err)
	}

	client := &wiki.Client{
		Endpoint:  cfg.Endpoint,
		UserAgent: cfg.UserAgent,
		IntroOnly: cfg.IntroOnly,
		PlainText: cfg.PlainText,
		Fetcher:   fetcher,
	}
	resolved := wiki.ResolveLanguage(lang, a.lookupEnv, cfg.DefaultLanguage)
	logging.Logf(logging.Debug, "Resolved language '%s' (flag '%s', default '%s')", resolved, lang, cfg.DefaultLanguage)

	extract, err := client.Lookup(context.Background(), resolved, phrase)
	if err != nil {
		logging.Logf(logging.Debug, "Lookup failed: %v", err)
		fmt.Fprintln(a.stderr, wiki.Message(err))
		return err
	}
	fmt.Fprintln(a.stdout, extract)
	return nil
}

// parseInterleaved parses flags that may appear before or after positional
// arguments. Everything after a "--" terminator is positional.
func parseInterleaved(fs *flag.FlagSet, args []string) ([]string, error) {
	var positional []string
	for {
		if err := fs.Parse(args); err != nil {
			return nil, err
		}
		rest := fs.Args()
		if len(rest) == 0 {
			return positional, nil
		}
		if consumed := len(args) - len(rest); consumed > 0 && args[consumed-1] == "--" {
			return append(positional, rest...), nil
		}
		positional = append(positional, rest[0])
		args = rest[1:]
	}
}

// Helper to check if a specific flag was set
func isFlagSet(fs *flag.FlagSet, name string) bool {
	set := false
	fs.Visit(func(f *flag.Flag) {
		if f.Name == name {
			set = true
		}
	})
	return set
}
