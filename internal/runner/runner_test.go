package runner

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/wills/pgn2study/internal/config"
	"github.com/wills/pgn2study/pkg/studydto"
)

const validPGN = `[Event "Test"]
[White "Alice"]
[Black "Bob"]

1. e4 e5 2. Nf3 Nc6 *
`

const illegalPGN = `[Event "Broken"]

1. e4 e4 *
`

func newTestRunner(t *testing.T, deleteSource bool) (*Runner, string, string, *bytes.Buffer) {
	t.Helper()
	inDir := t.TempDir()
	outDir := t.TempDir()
	cfg := &config.AppConfig{
		InputPath:                   inDir,
		OutputPath:                  outDir,
		DeleteSourceAfterConversion: deleteSource,
	}
	var out bytes.Buffer
	r, err := New(cfg, nil, &out)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return r, inDir, outDir, &out
}

func writePGN(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func readDocuments(t *testing.T, outDir string) []studydto.Document {
	t.Helper()
	paths, err := filepath.Glob(filepath.Join(outDir, "*.json"))
	if err != nil {
		t.Fatal(err)
	}
	docs := make([]studydto.Document, 0, len(paths))
	for _, p := range paths {
		raw, err := os.ReadFile(p)
		if err != nil {
			t.Fatal(err)
		}
		var doc studydto.Document
		if err := json.Unmarshal(raw, &doc); err != nil {
			t.Fatalf("unmarshal %s: %v", p, err)
		}
		if want := doc.ChessStudyID + ".json"; filepath.Base(p) != want {
			t.Errorf("output file %s, want %s", filepath.Base(p), want)
		}
		docs = append(docs, doc)
	}
	return docs
}

func TestRun_ConvertsFile(t *testing.T) {
	r, inDir, outDir, out := newTestRunner(t, false)
	src := writePGN(t, inDir, "game.pgn", validPGN)

	sum, err := r.Run()
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if sum.Converted != 1 || sum.Failed != 0 || sum.Deleted != 0 {
		t.Fatalf("summary = %+v", sum)
	}

	docs := readDocuments(t, outDir)
	if len(docs) != 1 {
		t.Fatalf("expected 1 document, got %d", len(docs))
	}
	doc := docs[0]
	if len(doc.Moves) != 4 {
		t.Errorf("moves = %d, want 4", len(doc.Moves))
	}
	if doc.Headers["White"] != "Alice" {
		t.Errorf("headers = %v", doc.Headers)
	}

	// Source kept without delete-source; snippet printed for the note.
	if _, err := os.Stat(src); err != nil {
		t.Errorf("source file gone: %v", err)
	}
	if !strings.Contains(out.String(), "chessStudyId: "+doc.ChessStudyID) {
		t.Errorf("output missing chessStudy snippet:\n%s", out.String())
	}
}

func TestRun_DeleteSourceAfterWrite(t *testing.T) {
	r, inDir, outDir, _ := newTestRunner(t, true)
	src := writePGN(t, inDir, "game.pgn", validPGN)

	sum, err := r.Run()
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if sum.Deleted != 1 {
		t.Errorf("summary = %+v, want 1 deleted", sum)
	}
	if _, err := os.Stat(src); !os.IsNotExist(err) {
		t.Errorf("source still present (err=%v)", err)
	}
	if docs := readDocuments(t, outDir); len(docs) != 1 {
		t.Errorf("expected 1 document, got %d", len(docs))
	}
}

func TestRun_FailedGameKeepsSource(t *testing.T) {
	r, inDir, outDir, _ := newTestRunner(t, true)
	src := writePGN(t, inDir, "broken.pgn", illegalPGN)

	sum, err := r.Run()
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if sum.Converted != 0 || sum.Failed != 1 || sum.Deleted != 0 {
		t.Fatalf("summary = %+v", sum)
	}
	if _, err := os.Stat(src); err != nil {
		t.Errorf("failed source must be retained: %v", err)
	}
	if docs := readDocuments(t, outDir); len(docs) != 0 {
		t.Errorf("no documents expected, got %d", len(docs))
	}
}

func TestRun_MixedFileSuppressesDelete(t *testing.T) {
	r, inDir, outDir, _ := newTestRunner(t, true)
	src := writePGN(t, inDir, "mixed.pgn", validPGN+"\n"+illegalPGN)

	sum, err := r.Run()
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if sum.Converted != 1 || sum.Failed != 1 || sum.Deleted != 0 {
		t.Fatalf("summary = %+v", sum)
	}
	// The good game is written, but the partially failed source survives.
	if docs := readDocuments(t, outDir); len(docs) != 1 {
		t.Errorf("expected 1 document, got %d", len(docs))
	}
	if _, err := os.Stat(src); err != nil {
		t.Errorf("partially failed source must be retained: %v", err)
	}
}

func TestRun_MultipleGamesPerFile(t *testing.T) {
	r, inDir, outDir, _ := newTestRunner(t, false)
	second := strings.ReplaceAll(validPGN, "Test", "Rematch")
	writePGN(t, inDir, "double.pgn", validPGN+"\n"+second)

	sum, err := r.Run()
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if sum.Converted != 2 {
		t.Fatalf("summary = %+v, want 2 converted", sum)
	}

	docs := readDocuments(t, outDir)
	if len(docs) != 2 {
		t.Fatalf("expected 2 documents, got %d", len(docs))
	}
	if docs[0].ChessStudyID == docs[1].ChessStudyID {
		t.Error("documents share a chessStudyId")
	}
	events := map[string]bool{}
	for _, d := range docs {
		events[d.Headers["Event"]] = true
	}
	if !events["Test"] || !events["Rematch"] {
		t.Errorf("events = %v", events)
	}
}

func TestRun_IgnoresNonPGNFiles(t *testing.T) {
	r, inDir, _, _ := newTestRunner(t, false)
	writePGN(t, inDir, "notes.txt", "not a game")

	sum, err := r.Run()
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if sum.Converted != 0 || sum.Failed != 0 {
		t.Errorf("summary = %+v, want all zero", sum)
	}
}
