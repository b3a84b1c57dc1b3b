// Package pgn turns one PGN game text into an ordered, legally replayed
// sequence of move descriptors plus verbatim header tags. Movetext is
// replayed against a corentings/chess game so every descriptor carries
// resolved squares and capture facts instead of raw notation guesses.
package pgn

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode"

	chess "github.com/corentings/chess/v2"
)

// TagPair is one PGN header tag, preserved in source order.
type TagPair struct {
	Key   string
	Value string
}

// MoveDescriptor is one replayed ply. Capture covers both ordinary
// captures and en passant; EnPassant is set only for the latter.
type MoveDescriptor struct {
	Ply       int
	SAN       string
	From      chess.Square
	To        chess.Square
	Piece     chess.PieceType
	Capture   bool
	EnPassant bool
	Promotion chess.PieceType
	Comment   string
}

// Game is a fully parsed PGN game.
type Game struct {
	Tags  []TagPair
	Moves []MoveDescriptor
}

// Tag returns the value of the named header tag, or "" when absent.
func (g *Game) Tag(key string) string {
	for _, t := range g.Tags {
		if t.Key == key {
			return t.Value
		}
	}
	return ""
}

// ParseError reports the ply and move text that made a game unplayable.
// Ply is 0 when the failure is in the header section.
type ParseError struct {
	Ply int
	SAN string
	Err error
}

func (e *ParseError) Error() string {
	if e.Ply == 0 {
		return fmt.Sprintf("pgn: header %q: %v", e.SAN, e.Err)
	}
	return fmt.Sprintf("pgn: ply %d (%s): %v", e.Ply, e.SAN, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

var tagRe = regexp.MustCompile(`^\[\s*(\w+)\s+"(.*)"\s*\]$`)

var resultTokens = map[string]bool{
	"1-0":     true,
	"0-1":     true,
	"1/2-1/2": true,
	"*":       true,
}

// ParseGame parses exactly one game's PGN text. The whole game is rejected
// on the first move that cannot be replayed; there is no partial output.
func ParseGame(pgnText string) (*Game, error) {
	tags, movetext, err := splitSections(pgnText)
	if err != nil {
		return nil, err
	}

	g := &Game{Tags: tags}
	game := chess.NewGame()
	notation := chess.AlgebraicNotation{}

	rs := []rune(movetext)
	i := 0
	for i < len(rs) {
		switch c := rs[i]; {
		case unicode.IsSpace(c):
			i++
		case c == '{':
			comment, next := readBraceComment(rs, i)
			attachComment(g, comment)
			i = next
		case c == ';':
			comment, next := readLineComment(rs, i)
			attachComment(g, comment)
			i = next
		case c == '(':
			i = skipVariation(rs, i)
		case c == '$':
			i = skipToken(rs, i)
		default:
			tok, next := readToken(rs, i)
			if next == i {
				// stray delimiter such as an unmatched ')'
				i++
				continue
			}
			i = next
			san := cleanToken(tok)
			if san == "" {
				continue
			}
			if resultTokens[san] {
				return g, nil
			}
			desc, err := applyMove(game, notation, san, len(g.Moves)+1)
			if err != nil {
				return nil, err
			}
			g.Moves = append(g.Moves, desc)
		}
	}
	return g, nil
}

func applyMove(game *chess.Game, notation chess.AlgebraicNotation, san string, ply int) (MoveDescriptor, error) {
	pos := game.Position()
	mv, err := notation.Decode(pos, san)
	if err != nil {
		return MoveDescriptor{}, &ParseError{Ply: ply, SAN: san, Err: err}
	}

	desc := MoveDescriptor{
		Ply:       ply,
		SAN:       san,
		From:      mv.S1(),
		To:        mv.S2(),
		Piece:     pos.Board().Piece(mv.S1()).Type(),
		Capture:   mv.HasTag(chess.Capture) || mv.HasTag(chess.EnPassant),
		EnPassant: mv.HasTag(chess.EnPassant),
		Promotion: mv.Promo(),
	}

	// A pawn landing on the back rank must promote.
	if desc.Piece == chess.Pawn && desc.Promotion == chess.NoPieceType {
		if r := desc.To.Rank(); r == chess.Rank1 || r == chess.Rank8 {
			return MoveDescriptor{}, &ParseError{Ply: ply, SAN: san, Err: errors.New("pawn move to back rank without promotion")}
		}
	}

	if err := game.Move(mv, nil); err != nil {
		return MoveDescriptor{}, &ParseError{Ply: ply, SAN: san, Err: err}
	}
	return desc, nil
}

// splitSections separates header tag lines from the movetext body.
func splitSections(pgnText string) ([]TagPair, string, error) {
	var tags []TagPair
	lines := strings.Split(pgnText, "\n")
	for idx, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if strings.HasPrefix(trimmed, "[") {
			m := tagRe.FindStringSubmatch(trimmed)
			if m == nil {
				return nil, "", &ParseError{SAN: trimmed, Err: errors.New("malformed tag pair")}
			}
			tags = append(tags, TagPair{Key: m[1], Value: unescapeTagValue(m[2])})
			continue
		}
		// First non-tag, non-blank line starts the movetext.
		return tags, strings.Join(lines[idx:], "\n"), nil
	}
	return tags, "", nil
}

func unescapeTagValue(v string) string {
	v = strings.ReplaceAll(v, `\"`, `"`)
	return strings.ReplaceAll(v, `\\`, `\`)
}

func attachComment(g *Game, comment string) {
	comment = strings.TrimSpace(strings.ReplaceAll(comment, "\n", " "))
	if comment == "" || len(g.Moves) == 0 {
		// Comments ahead of the first move have no move to belong to.
		return
	}
	last := &g.Moves[len(g.Moves)-1]
	if last.Comment == "" {
		last.Comment = comment
	} else {
		last.Comment += " " + comment
	}
}

func readBraceComment(rs []rune, i int) (string, int) {
	j := i + 1
	for j < len(rs) && rs[j] != '}' {
		j++
	}
	comment := string(rs[i+1 : j])
	if j < len(rs) {
		j++ // consume '}'
	}
	return comment, j
}

func readLineComment(rs []rune, i int) (string, int) {
	j := i + 1
	for j < len(rs) && rs[j] != '\n' {
		j++
	}
	return string(rs[i+1 : j]), j
}

// skipVariation drops a parenthesized variation, including nested ones.
// Brace comments inside the variation may contain parentheses, so they
// are skipped as opaque blocks.
func skipVariation(rs []rune, i int) int {
	depth := 0
	for i < len(rs) {
		switch rs[i] {
		case '(':
			depth++
			i++
		case ')':
			depth--
			i++
			if depth == 0 {
				return i
			}
		case '{':
			_, i = readBraceComment(rs, i)
		default:
			i++
		}
	}
	return i
}

func skipToken(rs []rune, i int) int {
	_, next := readToken(rs, i)
	return next
}

func readToken(rs []rune, i int) (string, int) {
	j := i
	for j < len(rs) {
		c := rs[j]
		if unicode.IsSpace(c) || c == '{' || c == ';' || c == '(' || c == ')' {
			break
		}
		j++
	}
	return string(rs[i:j]), j
}

// cleanToken strips move-number prefixes ("3.", "12...") and trailing
// annotation glyphs ("!?") so only the SAN itself remains. Result tokens
// pass through untouched.
func cleanToken(tok string) string {
	if resultTokens[tok] {
		return tok
	}
	rest := strings.TrimRight(tok, "!?")
	stripped := strings.TrimLeft(rest, "0123456789")
	if stripped == "" {
		// bare move number
		return ""
	}
	if stripped != rest && strings.HasPrefix(stripped, ".") {
		rest = strings.TrimLeft(stripped, ".")
	}
	// Zero-style castling appears in hand-typed PGN.
	switch rest {
	case "0-0", "0-0+", "0-0#":
		return "O-O" + rest[3:]
	case "0-0-0", "0-0-0+", "0-0-0#":
		return "O-O-O" + rest[5:]
	}
	return rest
}

// SplitGames cuts a PGN text blob into per-game blocks. A new game starts
// at the first tag line following movetext.
func SplitGames(text string) []string {
	var games []string
	var cur []string
	inMovetext := false

	flush := func() {
		block := strings.TrimSpace(strings.Join(cur, "\n"))
		if block != "" {
			games = append(games, block)
		}
		cur = nil
	}

	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		isTag := strings.HasPrefix(trimmed, "[") && tagRe.MatchString(trimmed)
		if isTag && inMovetext {
			flush()
			inMovetext = false
		}
		if trimmed != "" && !isTag {
			inMovetext = true
		}
		cur = append(cur, line)
	}
	flush()
	return games
}
