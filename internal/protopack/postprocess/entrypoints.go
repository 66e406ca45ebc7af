package postprocess

import (
	"os"
	"path/filepath"

	"protopack/internal/protopack/domain"
	"protopack/internal/protopack/protoscan"
	"protopack/internal/protopack/target"
	"protopack/internal/protopack/workspace"
	"protopack/pkg/errors"
	"protopack/pkg/logger"
)

// SynthesizeEntryPoints writes the target's aggregating entry files into
// the canonical package tree. The export set is derived from the
// relocated units and the scanned proto symbols, so every generated
// module is covered regardless of how many services the sources declare.
func SynthesizeEntryPoints(ws *workspace.Workspace, tgt *target.Target, units []domain.GeneratedUnit, idx *protoscan.Index, log *logger.Logger) error {
	log = log.WithField("component", "postprocess")

	files, err := tgt.EntryFiles(units, idx)
	if err != nil {
		return errors.WrapPostProcessError("entrypoints", ws.PackageDir, err)
	}

	for rel, content := range files {
		dest := filepath.Join(ws.PackageDir, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
			return errors.WrapPostProcessError("entrypoints", rel, err)
		}
		if err := os.WriteFile(dest, []byte(content), 0o644); err != nil {
			return errors.WrapPostProcessError("entrypoints", rel, err)
		}
	}
	log.Debug("synthesized entry points", "files", len(files))
	return nil
}
