package main

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dgallion1/linkorg/internal/config"
	"github.com/dgallion1/linkorg/internal/library"
	"github.com/dgallion1/linkorg/internal/store"
)

// cli holds the state shared by every subcommand of one invocation.
type cli struct {
	configPath string
	verbose    bool

	cfg config.Config
	log *slog.Logger
}

func newRootCmd() *cobra.Command {
	c := &cli{}
	root := &cobra.Command{
		Use:   "linkorg",
		Short: "Index and search the links in your notes",
		Long: `linkorg reads org-mode, Markdown and a few import formats from a notes
directory, builds a files -> headings -> links tree for each file and keeps
every link with its reading progress in a searchable index.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Name() == "version" {
				return nil
			}
			return c.load(cmd.ErrOrStderr())
		},
	}
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default: <user config dir>/linkorg/config.toml)")
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(
		newVersionCmd(),
		newInitCmd(c),
		newShowCmd(c),
		newScanCmd(c),
		newSearchCmd(c),
		newTagsCmd(c),
		newStatsCmd(c),
		newExportCmd(c),
		newServeCmd(c),
	)
	return root
}

// load reads the configuration and sets up a text logger on w.
func (c *cli) load(w io.Writer) error {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	c.cfg = cfg
	c.log = slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: c.level()}))
	return nil
}

func (c *cli) level() slog.Level {
	if c.verbose {
		return slog.LevelDebug
	}
	return parseLevel(c.cfg.LogLevel)
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func (c *cli) openLibrary() (*library.Library, error) {
	if err := c.cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return library.New(c.cfg.NotesDir, library.Options{
		MaxFileBytes:         c.cfg.MaxFileBytes,
		CacheSize:            c.cfg.CacheSize,
		PDFFallbackPdftotext: c.cfg.PDFFallbackPdftotext,
	})
}

// openStore opens the index. The caller must Close it.
func (c *cli) openStore() (*store.Store, error) {
	idx, err := store.Open(c.cfg.DataDir)
	if err != nil {
		return nil, fmt.Errorf("open index: %w", err)
	}
	return idx, nil
}
