package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/JoelKayemba/App-soin-plaie-sub001/internal/config"
	"github.com/JoelKayemba/App-soin-plaie-sub001/internal/evalctx"
	"github.com/JoelKayemba/App-soin-plaie-sub001/internal/logger"
	"github.com/JoelKayemba/App-soin-plaie-sub001/internal/models"
	"github.com/JoelKayemba/App-soin-plaie-sub001/internal/schema"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// loadConfig reads the config file named by --config (or the default
// location) and merges the persistent flags over it.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	configPath, _ := cmd.Flags().GetString("config")
	var cfg *config.Config
	var err error
	if configPath != "" {
		cfg, err = config.LoadConfig(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config from %s: %w", configPath, err)
		}
	} else {
		cfg, err = config.LoadConfigFromDir(".")
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
	}

	changed := func(name string) *string {
		if !cmd.Flags().Changed(name) {
			return nil
		}
		v, _ := cmd.Flags().GetString(name)
		return &v
	}
	var tables []string
	if cmd.Flags().Changed("constat-table") {
		tables, _ = cmd.Flags().GetStringSlice("constat-table")
	}
	cfg.MergeWithFlags(changed("log-level"), changed("log-dir"), changed("schema-dir"),
		changed("schema-db"), changed("reference-date"), tables)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// engine holds the long-lived collaborators of one CLI invocation.
type engine struct {
	cfg     *config.Config
	source  schema.Source
	store   *schema.Store
	console *logger.ConsoleLogger
	file    *logger.FileLogger
	sink    logger.Sink
	db      *schema.SQLiteSource
}

// newEngine wires config, schema sources and diagnostic sinks. Diagnostics
// go to stderr and, when a log dir is configured, to a run log file.
func newEngine(cmd *cobra.Command) (*engine, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	e := &engine{cfg: cfg, console: logger.NewConsoleLogger(cmd.ErrOrStderr(), cfg.LogLevel)}
	sinks := logger.Tee{e.console}
	if cfg.LogDir != "" {
		fl, err := logger.NewFileLoggerWithDirAndLevel(cfg.LogDir, cfg.LogLevel)
		if err != nil {
			e.console.LogWarn(fmt.Sprintf("file logging disabled: %v", err))
		} else {
			e.file = fl
			sinks = append(sinks, fl)
		}
	}
	e.sink = sinks

	var chain schema.Chain
	if cfg.SchemaDB != "" {
		db, err := schema.NewSQLiteSource(cfg.SchemaDB)
		if err != nil {
			e.Close()
			return nil, fmt.Errorf("failed to open schema database: %w", err)
		}
		e.db = db
		chain = append(chain, db)
	}
	if cfg.SchemaDir != "" {
		chain = append(chain, schema.NewDirSource(cfg.SchemaDir))
	}
	chain = append(chain, schema.Builtin())
	e.source = chain
	e.store = schema.NewStore(chain, e.sink)
	return e, nil
}

func (e *engine) builder() (*evalctx.Builder, error) {
	opts := []evalctx.Option{
		evalctx.WithSchemas(e.store),
		evalctx.WithSink(e.sink),
		evalctx.WithChronicThreshold(e.cfg.ChronicAfterDays),
	}
	ref, ok, err := e.cfg.Reference()
	if err != nil {
		return nil, err
	}
	if ok {
		opts = append(opts, evalctx.WithReferenceDate(ref))
	}
	return evalctx.NewBuilder(opts...), nil
}

func (e *engine) logInfo(message string) {
	if e.file != nil {
		e.file.LogInfo(message)
	}
	e.console.LogDebug(message)
}

// Close releases the log file and the schema database.
func (e *engine) Close() {
	if e.file != nil {
		e.file.Close()
	}
	if e.db != nil {
		e.db.Close()
	}
}

// loadAnswers reads an answers document: table id -> field id -> value.
func loadAnswers(path string) (models.EvaluationData, error) {
	var r io.Reader
	if path == "-" {
		r = os.Stdin
	} else {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open answers: %w", err)
		}
		defer f.Close()
		r = f
	}

	raw := map[string]map[string]any{}
	if err := yaml.NewDecoder(r).Decode(&raw); err != nil && err != io.EOF {
		return nil, fmt.Errorf("failed to parse answers %s: %w", path, err)
	}
	data := make(models.EvaluationData, len(raw))
	for tableID, answers := range raw {
		data[tableID] = models.TableAnswers(answers)
	}
	return data, nil
}
