// Package cli wires the terminal commands: the two finance terminals, the
// two bidding terminals, the reset helper and the facilitator API server.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"dealroom/internal/config"
	"dealroom/internal/db"
	"dealroom/internal/logger"
	gormrepository "dealroom/internal/repository/gorm"
)

var (
	flagConfig  string
	flagSession string
	flagTeam    int
)

var rootCmd = &cobra.Command{
	Use:   "dealroom",
	Short: "Multi-terminal deal simulation backed by a shared store",
	Long: `dealroom runs classroom deal simulations where several terminals
share one session through the database: an input team proposes financial
terms while a reviewing team approves them, or a facilitator prices
companies while investors bid for shares.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "path to YAML config file")
	rootCmd.PersistentFlags().StringVar(&flagSession, "session", "", "session id (overrides config and DR_SESSION_ID)")
	rootCmd.PersistentFlags().IntVar(&flagTeam, "team", 0, "team id (overrides config)")

	rootCmd.AddCommand(financeCmd)
	rootCmd.AddCommand(biddingCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(serveCmd)
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// app bundles the shared bootstrap every command needs: config, logger,
// store connection and the migrated repository.
type app struct {
	cfg    config.Config
	logger *zap.Logger
	conn   *db.DB
	store  *gormrepository.Store
}

func newApp() (*app, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if flagSession != "" {
		cfg.Session.ID = flagSession
	}
	if flagTeam > 0 {
		cfg.Session.TeamID = flagTeam
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}

	conn, err := db.Connect(cfg.DB, log)
	if err != nil {
		return nil, fmt.Errorf("connect store: %w", err)
	}
	if err := db.AutoMigrate(conn.Gorm); err != nil {
		_ = db.Close(conn)
		return nil, fmt.Errorf("migrate store: %w", err)
	}

	return &app{
		cfg:    cfg,
		logger: log,
		conn:   conn,
		store:  gormrepository.New(conn.Gorm),
	}, nil
}

func (a *app) Close() {
	_ = a.logger.Sync()
	_ = db.Close(a.conn)
}
