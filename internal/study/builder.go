// Package study enriches parsed moves with flags and identifiers and
// assembles the chess-study JSON document.
package study

import (
	"fmt"

	chess "github.com/corentings/chess/v2"

	"github.com/wills/pgn2study/internal/pgn"
	"github.com/wills/pgn2study/internal/shortid"
	"github.com/wills/pgn2study/pkg/studydto"
)

// Builder assembles documents. It owns one id generator, so every id
// issued across all documents built by the same Builder is distinct.
// Scope one Builder per conversion run.
type Builder struct {
	ids *shortid.Generator
}

func NewBuilder() *Builder {
	return &Builder{ids: shortid.NewGenerator()}
}

// BuildDocument turns a parsed game into its final document. The only
// failure mode is id-generation exhaustion, fatal for this document.
func (b *Builder) BuildDocument(g *pgn.Game) (*studydto.Document, error) {
	docID, err := b.ids.Next()
	if err != nil {
		return nil, fmt.Errorf("study: document id: %w", err)
	}

	doc := &studydto.Document{
		Version:      studydto.Version,
		ChessStudyID: docID,
		Title:        deriveTitle(g),
		Headers:      make(map[string]string, len(g.Tags)),
		Moves:        make([]studydto.Move, 0, len(g.Moves)),
	}
	for _, t := range g.Tags {
		doc.Headers[t.Key] = t.Value
	}

	for _, d := range g.Moves {
		id, err := b.ids.Next()
		if err != nil {
			return nil, fmt.Errorf("study: move %d id: %w", d.Ply, err)
		}
		m := studydto.Move{
			ID:            id,
			SequenceIndex: d.Ply,
			SAN:           d.SAN,
			FromSquare:    d.From.String(),
			ToSquare:      d.To.String(),
			PieceMoved:    pieceName(d.Piece),
			Flags:         deriveFlags(d),
		}
		if d.Promotion != chess.NoPieceType {
			m.Promotion = pieceName(d.Promotion)
		}
		if d.Comment != "" {
			comment := d.Comment
			m.Comment = &comment
		}
		doc.Moves = append(doc.Moves, m)
	}
	return doc, nil
}

func pieceName(pt chess.PieceType) string {
	switch pt {
	case chess.Pawn:
		return "pawn"
	case chess.Knight:
		return "knight"
	case chess.Bishop:
		return "bishop"
	case chess.Rook:
		return "rook"
	case chess.Queen:
		return "queen"
	case chess.King:
		return "king"
	default:
		return ""
	}
}

// deriveTitle builds the "White (White, Elo) VS Black (Black, Elo)" title
// the plugin shows above the board. Empty when player tags are missing.
func deriveTitle(g *pgn.Game) string {
	white, black := g.Tag("White"), g.Tag("Black")
	if white == "" || black == "" {
		return ""
	}
	whiteElo, blackElo := g.Tag("WhiteElo"), g.Tag("BlackElo")
	if whiteElo == "" {
		whiteElo = "?"
	}
	if blackElo == "" {
		blackElo = "?"
	}
	return fmt.Sprintf("%s (White, %s) VS %s (Black, %s)", white, whiteElo, black, blackElo)
}
