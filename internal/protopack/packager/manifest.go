// Package packager emits the package descriptor and drives the
// ecosystem's native package builder to produce the final distributable.
package packager

import (
	"os"
	"path/filepath"
	"text/template"

	"github.com/Masterminds/sprig/v3"

	"protopack/internal/protopack/target"
	"protopack/internal/protopack/workspace"
	"protopack/pkg/config"
	"protopack/pkg/errors"
	"protopack/pkg/logger"
)

// manifestData is what the target's manifest template renders against
type manifestData struct {
	Name           string
	Version        string
	PackageDir     string
	ProtocVersion  string
	GRPCVersion    string
	RuntimeVersion string
	GenerateGRPC   bool
	GenerateWeb    bool
}

// WriteManifest renders the target's package descriptor at the output
// root, embedding the resolved version pins. The file is overwritten
// unconditionally; manual edits do not survive a re-run.
func WriteManifest(ws *workspace.Workspace, tgt *target.Target, cfg *config.BuildConfig, log *logger.Logger) error {
	log = log.WithField("component", "packager")

	tmpl, err := template.New(tgt.ManifestFile).Funcs(sprig.TxtFuncMap()).Parse(tgt.ManifestTemplate)
	if err != nil {
		return errors.WrapPackagerError("manifest", err)
	}

	data := manifestData{
		Name:           cfg.PackageName,
		Version:        cfg.PackageVersion,
		PackageDir:     tgt.PackageDirName(cfg.PackageName),
		ProtocVersion:  cfg.ProtocVersion,
		GRPCVersion:    cfg.GRPCVersion,
		RuntimeVersion: cfg.RuntimeVersion,
		GenerateGRPC:   cfg.GenerateGRPC,
		GenerateWeb:    cfg.GenerateWeb,
	}

	dest := filepath.Join(ws.Output, tgt.ManifestFile)
	f, err := os.OpenFile(dest, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return errors.WrapPackagerError("manifest", err)
	}
	if err := tmpl.Execute(f, data); err != nil {
		_ = f.Close()
		return errors.WrapPackagerError("manifest", err)
	}
	if err := f.Close(); err != nil {
		return errors.WrapPackagerError("manifest", err)
	}

	log.Debug("manifest written", "path", dest)
	return nil
}
