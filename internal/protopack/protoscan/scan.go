// Package protoscan discovers the top-level symbols declared by the proto
// sources: package paths, service names and message names. The pipeline
// uses this to derive entry-point exports instead of assuming a single
// fixed service. Parsing is delegated to protoreflect; nothing here
// interprets the generated code.
package protoscan

import (
	"sort"

	"github.com/jhump/protoreflect/desc/protoparse"

	"protopack/pkg/errors"
)

// File describes one parsed proto source file
type File struct {
	// Name is the path relative to the source root, slash separated
	Name string
	// Package is the declared proto package (dot separated, may be empty)
	Package string
	// Services are the top-level service names declared in the file
	Services []string
	// Messages are the top-level message names declared in the file
	Messages []string
}

// Index is the discovery result over a whole source tree
type Index struct {
	Files []File
}

// Scan parses the given proto files (paths relative to sourceDir) and
// builds a symbol index. Files are returned in input order; symbol lists
// are sorted for deterministic downstream output.
func Scan(sourceDir string, protoFiles []string) (*Index, error) {
	if len(protoFiles) == 0 {
		return &Index{}, nil
	}

	parser := protoparse.Parser{
		ImportPaths: []string{sourceDir},
	}
	fds, err := parser.ParseFiles(protoFiles...)
	if err != nil {
		return nil, errors.WrapPostProcessError("scan", sourceDir, err)
	}

	idx := &Index{Files: make([]File, 0, len(fds))}
	for _, fd := range fds {
		f := File{
			Name:    fd.GetName(),
			Package: fd.GetPackage(),
		}
		for _, svc := range fd.GetServices() {
			f.Services = append(f.Services, svc.GetName())
		}
		for _, msg := range fd.GetMessageTypes() {
			f.Messages = append(f.Messages, msg.GetName())
		}
		sort.Strings(f.Services)
		sort.Strings(f.Messages)
		idx.Files = append(idx.Files, f)
	}
	return idx, nil
}

// Packages returns the distinct declared package paths, sorted
func (idx *Index) Packages() []string {
	seen := map[string]bool{}
	var pkgs []string
	for _, f := range idx.Files {
		if !seen[f.Package] {
			seen[f.Package] = true
			pkgs = append(pkgs, f.Package)
		}
	}
	sort.Strings(pkgs)
	return pkgs
}

// ServiceCount returns the total number of declared services
func (idx *Index) ServiceCount() int {
	n := 0
	for _, f := range idx.Files {
		n += len(f.Services)
	}
	return n
}
