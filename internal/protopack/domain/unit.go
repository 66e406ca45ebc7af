// Package domain holds the data model shared across pipeline stages.
package domain

// UnitKind classifies a generated source file
type UnitKind int

const (
	KindMessage UnitKind = iota
	KindService
	KindTypeDecl
)

func (k UnitKind) String() string {
	switch k {
	case KindMessage:
		return "message"
	case KindService:
		return "service"
	case KindTypeDecl:
		return "typedecl"
	default:
		return "unknown"
	}
}

// GeneratedUnit is one generated source file after relocation into the
// canonical package tree. Path is relative to the package directory and
// Package is the logical proto package path (dot separated, empty for
// files at the package root).
type GeneratedUnit struct {
	Path    string
	Package string
	Kind    UnitKind
}

// Artifact is the final distributable produced by the packager. It is the
// only entity intended to survive pipeline cleanup.
type Artifact struct {
	Language string
	Version  string
	Path     string
}
