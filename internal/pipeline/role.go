package pipeline

import (
	"fmt"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// RoleKind is the structural category of a source file.
type RoleKind int

// Role kinds, in book order.
const (
	RoleForeword RoleKind = iota
	RoleChapter
	RoleReferences
	RoleAppendix
)

// String returns the lowercase kind name.
func (k RoleKind) String() string {
	switch k {
	case RoleForeword:
		return "foreword"
	case RoleChapter:
		return "chapter"
	case RoleReferences:
		return "references"
	case RoleAppendix:
		return "appendix"
	default:
		return "unknown"
	}
}

// Role identifies a source file's place in the book.
// Chapter is set for RoleChapter, Letter for RoleAppendix.
type Role struct {
	Kind    RoleKind
	Chapter int
	Letter  byte

	// digits keeps a chapter number as written when it has leading zeros
	// ("01"), so its illustration is named after the file.
	digits string
}

// Foreword returns the foreword role.
func Foreword() Role { return Role{Kind: RoleForeword} }

// Chapter returns the role of chapter n.
func Chapter(n int) Role { return Role{Kind: RoleChapter, Chapter: n} }

// References returns the reference-list role.
func References() Role { return Role{Kind: RoleReferences} }

// Appendix returns the role of the appendix with the given letter.
func Appendix(letter byte) Role { return Role{Kind: RoleAppendix, Letter: letter} }

// String returns a short label such as "chapter 3" or "appendix B".
func (r Role) String() string {
	switch r.Kind {
	case RoleChapter:
		return fmt.Sprintf("chapter %d", r.Chapter)
	case RoleAppendix:
		return fmt.Sprintf("appendix %c", r.Letter)
	default:
		return r.Kind.String()
	}
}

// Discovery globs, relative to the book root. The reference list name is
// configured separately.
const (
	ForewordGlob = "foreword*.md"
	ChapterGlob  = "ch*.md"
	AppendixGlob = "app[A-D].md"
)

var (
	forewordName = regexp.MustCompile(`^foreword.*\.md$`)
	chapterName  = regexp.MustCompile(`^ch(\d+)\.md$`)
	appendixName = regexp.MustCompile(`^app([A-D])\.md$`)
)

// Classify derives a role from a file name (any directory part is ignored).
// referencesName is the configured reference list file name; empty disables
// that role. Returns false for files that are not book content.
func Classify(name, referencesName string) (Role, bool) {
	base := filepath.Base(name)

	if referencesName != "" && base == referencesName {
		return References(), true
	}
	if forewordName.MatchString(base) {
		return Foreword(), true
	}
	if m := chapterName.FindStringSubmatch(base); m != nil {
		n, err := strconv.Atoi(m[1])
		if err != nil {
			return Role{}, false
		}
		role := Chapter(n)
		if m[1] != strconv.Itoa(n) {
			role.digits = m[1]
		}
		return role, true
	}
	if m := appendixName.FindStringSubmatch(base); m != nil {
		return Appendix(m[1][0]), true
	}
	return Role{}, false
}

// Less reports whether a sorts before b in book order: foreword, chapters
// by number, references, appendices by letter.
func Less(a, b Role) bool {
	if a.Kind != b.Kind {
		return a.Kind < b.Kind
	}
	switch a.Kind {
	case RoleChapter:
		return a.Chapter < b.Chapter
	case RoleAppendix:
		return a.Letter < b.Letter
	default:
		return false
	}
}

// SortFiles orders files in book order. Ties (e.g. two forewords) fall back
// to the file name so the result never depends on discovery order.
func SortFiles(files []SourceFile) {
	sort.SliceStable(files, func(i, j int) bool {
		a, b := files[i], files[j]
		if Less(a.Role, b.Role) {
			return true
		}
		if Less(b.Role, a.Role) {
			return false
		}
		return strings.Compare(a.Name, b.Name) < 0
	})
}

// SourceFile is a loaded book source. Text is never mutated in place;
// passes return new strings.
type SourceFile struct {
	Path string // path as discovered, relative to the book root
	Name string // base file name, also the intermediate file name
	Role Role
	Text string
}
