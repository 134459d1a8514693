package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/always-cache/cache-entry/cache"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

var (
	// CLI flags
	configFilenameFlag string
	dbFilenameFlag     string
	providerFlag       string
	prefixFlag         string
	verbosityTraceFlag bool
	logFilenameFlag    string

	// this is set by goreleaser
	version string
)

func init() {
	flag.StringVar(&configFilenameFlag, "config", "", "Path to config file")
	flag.StringVar(&dbFilenameFlag, "db", "cache.db", "Cache DB file or directory name")
	flag.StringVar(&providerFlag, "provider", "sqlite", "Storage provider to inspect (sqlite or leveldb)")
	flag.StringVar(&prefixFlag, "prefix", "", "Only list entries with this key prefix")
	flag.BoolVar(&verbosityTraceFlag, "vv", false, "Verbosity: trace logging")
	flag.StringVar(&logFilenameFlag, "log-file", "", "Log file to use (in addition to stdout)")

	if version == "" {
		version = "DEV"
	}
}

type config struct {
	Provider string `yaml:"provider"`
	DB       string `yaml:"db"`
}

func getConfig(filename string) (config, error) {
	var cfg config
	configBytes, err := os.ReadFile(filename)
	if err != nil {
		return cfg, err
	}
	err = yaml.Unmarshal(configBytes, &cfg)
	return cfg, err
}

func main() {
	flag.Parse()

	// set log level
	logLevel := zerolog.DebugLevel
	if verbosityTraceFlag {
		logLevel = zerolog.TraceLevel
	}

	// set up log output to stderr
	// also output to logfile if specified
	logOutputs := make([]io.Writer, 0)
	logOutputs = append(logOutputs, zerolog.ConsoleWriter{Out: os.Stderr})
	if logFilenameFlag != "" {
		if logFileOutput, err := os.OpenFile(logFilenameFlag, os.O_APPEND|os.O_WRONLY|os.O_CREATE, 0644); err != nil {
			log.Fatal().Err(err).Msg("Cannot open log file")
		} else {
			logOutputs = append(logOutputs, logFileOutput)
		}
	}
	multiWriter := zerolog.MultiLevelWriter(logOutputs...)
	log.Logger = log.Level(logLevel).Output(multiWriter).
		With().Str("version", version).Logger()

	cfg := config{
		Provider: providerFlag,
		DB:       dbFilenameFlag,
	}
	if configFilenameFlag != "" {
		fileConfig, err := getConfig(configFilenameFlag)
		if err != nil {
			log.Fatal().Err(err).Msg("Could not read config file")
		}
		cfg = fileConfig
	}

	var storage cache.EntryStorage
	switch cfg.Provider {
	case "sqlite":
		s := cache.NewSQLiteStorage(cfg.DB)
		defer s.Close()
		storage = s
	case "leveldb":
		s, err := cache.NewLevelStorage(cfg.DB)
		if err != nil {
			log.Fatal().Err(err).Msg("Could not open leveldb storage")
		}
		defer s.Close()
		storage = s
	default:
		log.Fatal().Msgf("Unknown provider '%s'", cfg.Provider)
	}

	entries, err := storage.All(prefixFlag)
	if err != nil {
		log.Fatal().Err(err).Msg("Could not list entries")
	}

	for _, keyed := range entries {
		entry := keyed.Entry
		fmt.Printf("%s\n", keyed.Key)
		fmt.Printf("  %s\n", entry)
		fmt.Printf("  headers=%d body=%d bytes", len(entry.Headers()), entry.Resource().Size())
		if variants, err := entry.VariantMap(); err == nil {
			fmt.Printf(" variants=%d", len(variants))
		}
		fmt.Println()
	}

	log.Info().Msgf("Listed %d entries", len(entries))
}
