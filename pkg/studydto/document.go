// Package studydto holds the JSON document shape consumed by the
// chess-study note plugin.
package studydto

// Version is the document schema version understood by the plugin.
const Version = "0.0.1"

// Document is one converted game, written once and never mutated.
type Document struct {
	Version      string            `json:"version"`
	ChessStudyID string            `json:"chessStudyId"`
	Title        string            `json:"title,omitempty"`
	Headers      map[string]string `json:"headers"`
	Moves        []Move            `json:"moves"`
}

// Move is one ply of the game. Comment is a pointer so an absent
// annotation serializes as null rather than "".
type Move struct {
	ID            string   `json:"id"`
	SequenceIndex int      `json:"sequenceIndex"`
	SAN           string   `json:"sanNotation"`
	FromSquare    string   `json:"fromSquare"`
	ToSquare      string   `json:"toSquare"`
	PieceMoved    string   `json:"pieceMoved"`
	Flags         []string `json:"flags"`
	Promotion     string   `json:"promotion,omitempty"`
	Comment       *string  `json:"comment"`
}
