package chunker

import (
	"strconv"
	"strings"
	"testing"
)

func TestChunkText_EmptyInput(t *testing.T) {
	chunks := ChunkText("", Options{ChunkSize: 1024, Overlap: 128})
	if chunks != nil {
		t.Errorf("expected nil for empty input, got %v", chunks)
	}
}

func TestChunkText_WhitespaceOnly(t *testing.T) {
	chunks := ChunkText("   \n\n   \t  ", Options{ChunkSize: 1024, Overlap: 128})
	if chunks != nil {
		t.Errorf("expected nil for whitespace-only input, got %v", chunks)
	}
}

func TestChunkText_SingleChunk(t *testing.T) {
	text := "This is a short text that fits in one chunk."
	opts := Options{ChunkSize: 1000, Overlap: 100}

	chunks := ChunkText(text, opts)

	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	if chunks[0].Index != 0 {
		t.Errorf("expected Index=0, got %d", chunks[0].Index)
	}
	if chunks[0].Text != text {
		t.Errorf("expected text=%q, got %q", text, chunks[0].Text)
	}
	if chunks[0].Start != 0 || chunks[0].End != len(text) {
		t.Errorf("expected offsets [0,%d), got [%d,%d)", len(text), chunks[0].Start, chunks[0].End)
	}
}

func TestChunkText_MultipleChunks(t *testing.T) {
	text := strings.Repeat("word ", 300) // ~1500 chars
	opts := Options{ChunkSize: 500, Overlap: 50, MinChunkSize: 50}

	chunks := ChunkText(text, opts)

	if len(chunks) < 3 {
		t.Errorf("expected at least 3 chunks, got %d", len(chunks))
	}

	for i, chunk := range chunks {
		if chunk.Index != i {
			t.Errorf("chunk %d has Index=%d", i, chunk.Index)
		}
	}
}

func TestChunkText_OverlapPreserved(t *testing.T) {
	text := strings.Repeat("x", 1000)
	opts := Options{ChunkSize: 300, Overlap: 50, MinChunkSize: 50}

	chunks := ChunkText(text, opts)

	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}

	for i := 0; i < len(chunks)-1; i++ {
		overlap := chunks[i].End - chunks[i+1].Start
		if overlap < 0 {
			t.Errorf("chunks %d and %d have gap instead of overlap", i, i+1)
		}
	}
}

func TestChunkText_TailNotDuplicated(t *testing.T) {
	// A final chunk that ends the text must close the sequence; stepping
	// back by the overlap used to emit an extra tail chunk contained in
	// the one before it.
	text := strings.Repeat("a", 2000)
	opts := Options{ChunkSize: 1024, Overlap: 128, MinChunkSize: 100}

	chunks := ChunkText(text, opts)

	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}
	last := chunks[len(chunks)-1]
	if last.End != len(text) {
		t.Errorf("last chunk ends at %d, want %d", last.End, len(text))
	}
	for i := 1; i < len(chunks); i++ {
		prev, cur := chunks[i-1], chunks[i]
		if cur.Start >= prev.Start && cur.End <= prev.End {
			t.Errorf("chunk %d [%d,%d) is fully contained in chunk %d [%d,%d)",
				i, cur.Start, cur.End, i-1, prev.Start, prev.End)
		}
	}
}

func TestChunkText_ParagraphBoundary(t *testing.T) {
	text := strings.Repeat("a", 400) + "\n\n" + strings.Repeat("b", 400)
	opts := Options{ChunkSize: 500, Overlap: 50, MinChunkSize: 50}

	chunks := ChunkText(text, opts)

	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}
}

func TestChunkHierarchy_Empty(t *testing.T) {
	parents, children := ChunkHierarchy("", DefaultHierarchyOptions())
	if parents != nil || children != nil {
		t.Errorf("expected nil hierarchy for empty input")
	}
}

func TestChunkHierarchy_SmallDocument(t *testing.T) {
	text := "A short policy document. It has two sentences."
	parents, children := ChunkHierarchy(text, DefaultHierarchyOptions())

	if len(parents) != 1 {
		t.Fatalf("expected 1 parent, got %d", len(parents))
	}
	if parents[0].ID != "parent_0" {
		t.Errorf("parent ID = %q, want parent_0", parents[0].ID)
	}
	if len(children) != 1 {
		t.Fatalf("expected 1 child, got %d", len(children))
	}
	if children[0].ParentID != "parent_0" {
		t.Errorf("child ParentID = %q, want parent_0", children[0].ParentID)
	}
}

func TestChunkHierarchy_ParentIDsSequential(t *testing.T) {
	text := strings.Repeat("The policy covers hospitalization expenses. ", 200)
	parents, children := ChunkHierarchy(text, DefaultHierarchyOptions())

	if len(parents) < 2 {
		t.Fatalf("expected multiple parents, got %d", len(parents))
	}
	for i, p := range parents {
		want := "parent_" + strconv.Itoa(i)
		if p.ID != want {
			t.Errorf("parent %d ID = %q, want %q", i, p.ID, want)
		}
	}

	// Every child's parent must exist.
	ids := make(map[string]bool, len(parents))
	for _, p := range parents {
		ids[p.ID] = true
	}
	for _, c := range children {
		if !ids[c.ParentID] {
			t.Errorf("child %d references unknown parent %q", c.Index, c.ParentID)
		}
	}
}

func TestChunkHierarchy_ChildrenSmallerThanParents(t *testing.T) {
	text := strings.Repeat("Clause text describing exclusions and waiting periods. ", 100)
	opts := DefaultHierarchyOptions()
	parents, children := ChunkHierarchy(text, opts)

	if len(children) < len(parents) {
		t.Errorf("expected at least as many children (%d) as parents (%d)", len(children), len(parents))
	}
	for _, c := range children {
		if len(c.Text) > opts.ChildSize+opts.ChildOverlap {
			t.Errorf("child %d is %d chars, exceeds child sizing", c.Index, len(c.Text))
		}
	}
}

func TestChunkHierarchy_ChildIndicesGlobal(t *testing.T) {
	text := strings.Repeat("Sentence about the insured party and the insurer. ", 150)
	_, children := ChunkHierarchy(text, DefaultHierarchyOptions())

	for i, c := range children {
		if c.Index != i {
			t.Errorf("child %d has Index=%d", i, c.Index)
		}
	}
}
