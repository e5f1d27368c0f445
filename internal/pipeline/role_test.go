package pipeline

import (
	"math/rand"
	"slices"
	"testing"
)

// ---------------------------------------------------------------------------
// TestClassify - Filename to role mapping
// ---------------------------------------------------------------------------

func TestClassify(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		want   Role
		wantOK bool
	}{
		{name: "foreword.md", want: Foreword(), wantOK: true},
		{name: "foreword-faq.md", want: Foreword(), wantOK: true},
		{name: "ch1.md", want: Chapter(1), wantOK: true},
		{name: "ch12.md", want: Chapter(12), wantOK: true},
		{name: "/book/ch3.md", want: Chapter(3), wantOK: true},
		{name: "appA.md", want: Appendix('A'), wantOK: true},
		{name: "appD.md", want: Appendix('D'), wantOK: true},
		{name: "references.md", want: References(), wantOK: true},
		{name: "appE.md"},
		{name: "appa.md"},
		{name: "ch1-revised.md"},
		{name: "ch4a.md"},
		{name: "chapter1.md"},
		{name: "README.md"},
		{name: "foreword.txt"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, ok := Classify(tt.name, "references.md")
			if ok != tt.wantOK {
				t.Fatalf("Classify(%q) ok = %v, want %v", tt.name, ok, tt.wantOK)
			}
			if ok && got != tt.want {
				t.Errorf("Classify(%q) = %v, want %v", tt.name, got, tt.want)
			}
		})
	}
}

func TestClassify_LeadingZeros(t *testing.T) {
	t.Parallel()

	role, ok := Classify("ch01.md", "")
	if !ok {
		t.Fatal("Classify(ch01.md) failed")
	}
	if role.Kind != RoleChapter || role.Chapter != 1 {
		t.Errorf("Classify(ch01.md) = %v, want chapter 1", role)
	}
	if !Less(role, Chapter(2)) || Less(Chapter(1), role) || Less(role, Chapter(1)) {
		t.Error("ch01 should order as chapter 1")
	}
	if got := IllustrationPath(role, "png"); got != "images/chapters/ch01.png" {
		t.Errorf("IllustrationPath(ch01) = %q, want images/chapters/ch01.png", got)
	}
}

func TestClassify_NoReferencesName(t *testing.T) {
	t.Parallel()

	if _, ok := Classify("references.md", ""); ok {
		t.Error("references.md should not classify when no reference list is configured")
	}
}

func TestRole_String(t *testing.T) {
	t.Parallel()

	tests := map[Role]string{
		Foreword():    "foreword",
		Chapter(7):    "chapter 7",
		References():  "references",
		Appendix('C'): "appendix C",
		{Kind: 42}:    "unknown",
	}
	for role, want := range tests {
		if got := role.String(); got != want {
			t.Errorf("String() = %q, want %q", got, want)
		}
	}
}

// ---------------------------------------------------------------------------
// TestSortFiles - Book order invariant
// ---------------------------------------------------------------------------

func classified(t *testing.T, names ...string) []SourceFile {
	t.Helper()

	files := make([]SourceFile, 0, len(names))
	for _, name := range names {
		role, ok := Classify(name, "references.md")
		if !ok {
			t.Fatalf("Classify(%q) failed", name)
		}
		files = append(files, SourceFile{Path: name, Name: name, Role: role})
	}
	return files
}

func names(files []SourceFile) []string {
	out := make([]string, len(files))
	for i, f := range files {
		out[i] = f.Name
	}
	return out
}

func TestSortFiles_Example(t *testing.T) {
	t.Parallel()

	files := classified(t, "ch2.md", "ch1.md", "appB.md", "appA.md", "foreword.md")
	SortFiles(files)

	want := []string{"foreword.md", "ch1.md", "ch2.md", "appA.md", "appB.md"}
	if got := names(files); !slices.Equal(got, want) {
		t.Errorf("SortFiles() = %v, want %v", got, want)
	}
}

func TestSortFiles_NumericChapters(t *testing.T) {
	t.Parallel()

	files := classified(t, "ch10.md", "references.md", "ch9.md", "appC.md", "ch1.md")
	SortFiles(files)

	want := []string{"ch1.md", "ch9.md", "ch10.md", "references.md", "appC.md"}
	if got := names(files); !slices.Equal(got, want) {
		t.Errorf("SortFiles() = %v, want %v", got, want)
	}
}

func TestSortFiles_IndependentOfInputOrder(t *testing.T) {
	t.Parallel()

	want := []string{"foreword.md", "ch1.md", "ch2.md", "ch3.md", "references.md", "appA.md", "appB.md", "appC.md", "appD.md"}
	rng := rand.New(rand.NewSource(1))

	for i := 0; i < 50; i++ {
		shuffled := append([]string(nil), want...)
		rng.Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })

		files := classified(t, shuffled...)
		SortFiles(files)
		if got := names(files); !slices.Equal(got, want) {
			t.Fatalf("SortFiles(%v) = %v, want %v", shuffled, got, want)
		}
	}
}
