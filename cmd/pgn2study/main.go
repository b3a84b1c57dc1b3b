// Package main is the pgn2study CLI: it converts PGN game files into the
// JSON documents the chess-study note plugin renders.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	appcfg "github.com/wills/pgn2study/internal/config"
	"github.com/wills/pgn2study/internal/obslog"
	"github.com/wills/pgn2study/internal/runner"
)

// version is set at build time via ldflags.
var version = "dev"

var rootCmd = &cobra.Command{
	Use:   "pgn2study",
	Short: "Convert PGN chess games into chess-study JSON documents",
	Long: `pgn2study scans a directory for .pgn files, replays each game, and writes
one JSON document per game for the chess-study note plugin: every move with
its squares, flags (captures, castling, promotions, ...), comments, and a
unique id usable for cross-referencing.

Each converted document prints a chessStudy snippet ready to paste into a
note. Sources are deleted only after their documents are durably written,
and only when --delete-source is set.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfgFile, _ := cmd.Flags().GetString("config")
		cfg, err := appcfg.Load(cfgFile)
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("input") {
			cfg.InputPath, _ = cmd.Flags().GetString("input")
		}
		if cmd.Flags().Changed("output") {
			cfg.OutputPath, _ = cmd.Flags().GetString("output")
		}
		if cmd.Flags().Changed("delete-source") {
			cfg.DeleteSourceAfterConversion, _ = cmd.Flags().GetBool("delete-source")
		}

		if err := obslog.InitFromEnv(); err != nil {
			return err
		}
		defer obslog.Sync()

		r, err := runner.New(cfg, obslog.L(), cmd.OutOrStdout())
		if err != nil {
			return err
		}
		sum, err := r.Run()
		if err != nil {
			return err
		}
		if sum.Failed > 0 {
			return fmt.Errorf("%d game(s) failed to convert", sum.Failed)
		}
		return nil
	},
}

func init() {
	rootCmd.Flags().String("config", "", "config file (default: ./pgn2study.yaml)")
	rootCmd.Flags().String("input", "", "directory scanned for .pgn files")
	rootCmd.Flags().String("output", "", "directory receiving converted .json documents")
	rootCmd.Flags().Bool("delete-source", false, "delete each .pgn once all its games are converted and written")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
