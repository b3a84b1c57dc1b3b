package study

import (
	chess "github.com/corentings/chess/v2"

	"github.com/wills/pgn2study/internal/pgn"
)

// Flag names as the chess-study plugin expects them. A move may carry
// zero or several flags at once.
const (
	FlagCapture         = "capture"
	FlagEnPassant       = "enPassant"
	FlagCastleKingside  = "castleKingside"
	FlagCastleQueenside = "castleQueenside"
	FlagPawnDoubleMove  = "pawnDoubleMove"
	FlagPromotion       = "promotion"
)

// Each flag is an independent predicate over the resolved move, so one
// can be reasoned about (and tested) without the others.

func isCapture(d pgn.MoveDescriptor) bool { return d.Capture }

func isEnPassant(d pgn.MoveDescriptor) bool { return d.EnPassant }

func isCastleKingside(d pgn.MoveDescriptor) bool {
	return d.Piece == chess.King && fileDelta(d) == 2 && rankDelta(d) == 0
}

func isCastleQueenside(d pgn.MoveDescriptor) bool {
	return d.Piece == chess.King && fileDelta(d) == -2 && rankDelta(d) == 0
}

func isPawnDoubleMove(d pgn.MoveDescriptor) bool {
	return d.Piece == chess.Pawn && (rankDelta(d) == 2 || rankDelta(d) == -2)
}

func isPromotion(d pgn.MoveDescriptor) bool { return d.Promotion != chess.NoPieceType }

// deriveFlags evaluates every predicate in a fixed order so identical
// input always yields an identical flag list.
func deriveFlags(d pgn.MoveDescriptor) []string {
	flags := make([]string, 0, 2)
	if isCapture(d) {
		flags = append(flags, FlagCapture)
	}
	if isEnPassant(d) {
		flags = append(flags, FlagEnPassant)
	}
	if isCastleKingside(d) {
		flags = append(flags, FlagCastleKingside)
	}
	if isCastleQueenside(d) {
		flags = append(flags, FlagCastleQueenside)
	}
	if isPawnDoubleMove(d) {
		flags = append(flags, FlagPawnDoubleMove)
	}
	if isPromotion(d) {
		flags = append(flags, FlagPromotion)
	}
	return flags
}

func fileDelta(d pgn.MoveDescriptor) int {
	return int(d.To.File()) - int(d.From.File())
}

func rankDelta(d pgn.MoveDescriptor) int {
	return int(d.To.Rank()) - int(d.From.Rank())
}
