package main

import (
	"context"
	"io"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"yashubustudio/hobbyfinder/hobby"
	"yashubustudio/hobbyfinder/internal/config"
	"yashubustudio/hobbyfinder/internal/logging"
)

// app carries state shared by subcommands after the root pre-run.
type app struct {
	cfgFile  string
	logLevel string
	logFile  bool

	cfg       *config.Config
	logger    zerolog.Logger
	logCloser io.Closer
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "hobbyfinder",
		Short:         "Hybrid hobby recommender",
		Long:          "hobbyfinder ranks hobbies from a JSON catalog against quiz answers,\ncombining rule scores with sentence-embedding similarity.",
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
		PersistentPostRunE: func(*cobra.Command, []string) error {
			if a.logCloser != nil {
				return a.logCloser.Close()
			}
			return nil
		},
	}
	root.PersistentFlags().StringVarP(&a.cfgFile, "config", "c", "", "config file (default $HOBBY_CONFIG or ./hobbyfinder.yaml)")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "override logging.level")
	root.PersistentFlags().BoolVar(&a.logFile, "log-file", false, "also write logs to logging.file")

	root.AddCommand(
		newServeCmd(a),
		newReindexCmd(a),
		newRecommendCmd(a),
		newSearchCmd(a),
		newConfigCmd(a),
	)
	return root
}

func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(a.cfgFile)
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		cfg.Logging.Level = a.logLevel
	}
	a.cfg = cfg

	logCfg := logging.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		Caller:    cfg.Logging.Caller,
		Timestamp: true,
		Output:    cmd.ErrOrStderr(),
	}
	// The server always mirrors its log to the file; one-shot commands only on request.
	if a.logFile || cmd.Name() == "serve" {
		logCfg.File = strings.TrimSpace(cfg.Logging.File)
	}
	closer, err := logging.Init(logCfg)
	if err != nil {
		return err
	}
	a.logCloser = closer
	a.logger = logging.Logger()
	return nil
}

func (a *app) cacheStore() *hobby.CacheStore {
	return &hobby.CacheStore{
		MatrixPath:    a.cfg.Data.EmbeddingsPath,
		DocumentsPath: a.cfg.Data.DocumentsPath,
	}
}

func (a *app) newIndex() *hobby.Index {
	return hobby.NewIndex(hobby.IndexOptions{
		Model:  hobby.NewModelFactory(a.cfg.Embedder),
		Store:  a.cacheStore(),
		Logger: a.logger,
	})
}

// newService loads the catalog and prepares the index.
func (a *app) newService(ctx context.Context) *hobby.Service {
	return hobby.NewService(ctx, hobby.ServiceOptions{
		CatalogPath: a.cfg.Data.HobbiesPath,
		Index:       a.newIndex(),
		Ranking:     a.cfg.Ranking,
		Logger:      a.logger,
	})
}
