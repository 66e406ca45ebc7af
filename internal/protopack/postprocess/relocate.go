// Package postprocess applies the deterministic source-layout transforms
// between raw generator output and the canonical package tree: file
// relocation, entry-point synthesis and formatting.
package postprocess

import (
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"protopack/internal/protopack/domain"
	"protopack/internal/protopack/target"
	"protopack/internal/protopack/workspace"
	"protopack/pkg/errors"
	"protopack/pkg/logger"
)

// Relocate moves every generated file matching the target's extensions
// from the intermediate tree into the canonical package tree, preserving
// nested subtrees. Destination collisions are last-writer-wins; an
// overwrite is logged so colliding proto package layouts are at least
// visible. Returns the relocated units sorted by path.
func Relocate(ws *workspace.Workspace, tgt *target.Target, log *logger.Logger) ([]domain.GeneratedUnit, error) {
	log = log.WithField("component", "postprocess")

	var units []domain.GeneratedUnit
	err := filepath.WalkDir(ws.Intermediate, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !tgt.HasExtension(d.Name()) {
			return nil
		}

		rel, err := filepath.Rel(ws.Intermediate, p)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		dest := filepath.Join(ws.PackageDir, filepath.FromSlash(rel))

		if _, err := os.Stat(dest); err == nil {
			log.Warn("overwriting previously relocated file", "path", rel)
		}
		if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
			return err
		}
		if err := moveFile(p, dest); err != nil {
			return err
		}

		units = append(units, domain.GeneratedUnit{
			Path:    rel,
			Package: packageOf(rel),
			Kind:    tgt.KindOf(d.Name()),
		})
		return nil
	})
	if err != nil {
		return nil, errors.WrapPostProcessError("relocate", ws.Intermediate, err)
	}

	sort.Slice(units, func(i, j int) bool { return units[i].Path < units[j].Path })
	log.Debug("relocated generated files", "count", len(units))
	return units, nil
}

// packageOf derives the logical package path from a canonical-tree
// relative file path: directory components joined with dots, empty for
// files at the package root.
func packageOf(rel string) string {
	dir := filepath.ToSlash(filepath.Dir(rel))
	if dir == "." {
		return ""
	}
	return strings.ReplaceAll(dir, "/", ".")
}

// moveFile renames src to dest, falling back to copy-and-remove when the
// rename crosses filesystems.
func moveFile(src, dest string) error {
	if err := os.Rename(src, dest); err == nil {
		return nil
	}

	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dest, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}
	return os.Remove(src)
}
