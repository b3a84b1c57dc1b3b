// Package runner is the batch plumbing around the conversion core: it
// discovers .pgn files, converts each game, persists the JSON documents,
// and deletes sources only after their output is durably written.
package runner

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/wills/pgn2study/internal/config"
	"github.com/wills/pgn2study/internal/pgn"
	"github.com/wills/pgn2study/internal/study"
	"github.com/wills/pgn2study/pkg/studydto"
)

// Summary is the outcome of one run.
type Summary struct {
	Converted int // games converted and written
	Failed    int // games (or unreadable files) that produced no output
	Deleted   int // source files removed after successful conversion
}

type Runner struct {
	cfg    *config.AppConfig
	logger *zap.Logger
	out    io.Writer
}

// New wires a Runner. out receives human-readable status lines and the
// per-document chessStudy snippets; pass os.Stdout from the CLI.
func New(cfg *config.AppConfig, logger *zap.Logger, out io.Writer) (*Runner, error) {
	if cfg == nil {
		return nil, errors.New("nil config")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if out == nil {
		out = io.Discard
	}
	return &Runner{cfg: cfg, logger: logger, out: out}, nil
}

// Run converts every .pgn file directly under InputPath. A failed game
// fails only itself: the batch continues and the source file survives.
func (r *Runner) Run() (Summary, error) {
	log := r.logger.With(zap.String("run_id", uuid.NewString()))

	entries, err := os.ReadDir(r.cfg.InputPath)
	if err != nil {
		return Summary{}, fmt.Errorf("scan input dir: %w", err)
	}
	if err := os.MkdirAll(r.cfg.OutputPath, 0o755); err != nil {
		return Summary{}, fmt.Errorf("create output dir: %w", err)
	}

	// One builder per run keeps every issued id distinct across all
	// documents the run produces.
	builder := study.NewBuilder()

	var sum Summary
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".pgn") {
			continue
		}
		path := filepath.Join(r.cfg.InputPath, e.Name())
		converted, failed := r.convertFile(log, builder, path)
		sum.Converted += converted
		sum.Failed += failed

		if r.cfg.DeleteSourceAfterConversion && converted > 0 && failed == 0 {
			if err := removeSource(path); err != nil {
				log.Warn("source_delete_fail", zap.String("file", e.Name()), zap.Error(err))
			} else {
				sum.Deleted++
				log.Info("source_deleted", zap.String("file", e.Name()))
			}
		}
	}

	log.Info("run_done",
		zap.Int("converted", sum.Converted),
		zap.Int("failed", sum.Failed),
		zap.Int("deleted", sum.Deleted),
	)
	return sum, nil
}

func (r *Runner) convertFile(log *zap.Logger, builder *study.Builder, path string) (converted, failed int) {
	name := filepath.Base(path)

	raw, err := os.ReadFile(path)
	if err != nil {
		log.Error("read_fail", zap.String("file", name), zap.Error(err))
		fmt.Fprintf(r.out, "failed:    %s (%v)\n", name, err)
		return 0, 1
	}

	games := pgn.SplitGames(string(raw))
	if len(games) == 0 {
		log.Warn("no_games", zap.String("file", name))
		fmt.Fprintf(r.out, "failed:    %s (no games found)\n", name)
		return 0, 1
	}

	for i, block := range games {
		game, err := pgn.ParseGame(block)
		if err != nil {
			var perr *pgn.ParseError
			if errors.As(err, &perr) {
				log.Error("parse_fail",
					zap.String("file", name),
					zap.Int("game", i+1),
					zap.Int("ply", perr.Ply),
					zap.String("san", perr.SAN),
					zap.Error(err),
				)
			} else {
				log.Error("parse_fail", zap.String("file", name), zap.Int("game", i+1), zap.Error(err))
			}
			fmt.Fprintf(r.out, "failed:    %s game %d (%v)\n", name, i+1, err)
			failed++
			continue
		}

		doc, err := builder.BuildDocument(game)
		if err != nil {
			log.Error("build_fail", zap.String("file", name), zap.Int("game", i+1), zap.Error(err))
			fmt.Fprintf(r.out, "failed:    %s game %d (%v)\n", name, i+1, err)
			failed++
			continue
		}

		outPath := filepath.Join(r.cfg.OutputPath, doc.ChessStudyID+".json")
		if err := writeDocument(outPath, doc); err != nil {
			log.Error("write_fail", zap.String("file", name), zap.String("chess_study_id", doc.ChessStudyID), zap.Error(err))
			fmt.Fprintf(r.out, "failed:    %s game %d (%v)\n", name, i+1, err)
			failed++
			continue
		}

		converted++
		log.Info("convert_ok",
			zap.String("file", name),
			zap.Int("game", i+1),
			zap.String("chess_study_id", doc.ChessStudyID),
			zap.Int("moves", len(doc.Moves)),
		)
		fmt.Fprintf(r.out, "converted: %s game %d -> %s.json\n", name, i+1, doc.ChessStudyID)
		fmt.Fprintf(r.out, "```chessStudy\nchessStudyId: %s\n```\n", doc.ChessStudyID)
	}
	return converted, failed
}

// writeDocument persists pretty-printed JSON via temp file + rename, so a
// document either exists completely or not at all.
func writeDocument(path string, doc *studydto.Document) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal document: %w", err)
	}
	data = append(data, '\n')

	tmp, err := os.CreateTemp(filepath.Dir(path), ".pgn2study-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write document: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close document: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("publish document: %w", err)
	}
	return nil
}

// removeSource deletes a converted input. An already-missing file counts
// as success so retried runs stay idempotent.
func removeSource(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}
