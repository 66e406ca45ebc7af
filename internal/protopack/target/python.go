package target

import (
	"fmt"
	"path"
	"sort"
	"strings"

	"protopack/internal/protopack/container"
	"protopack/internal/protopack/domain"
	"protopack/internal/protopack/protoscan"
	"protopack/pkg/config"
)

const pythonManifestTemplate = `[build-system]
requires = ["setuptools>=61.0", "wheel"]
build-backend = "setuptools.build_meta"

[project]
name = {{ .Name | quote }}
version = {{ .Version | quote }}
description = "Generated protocol buffer bindings."
requires-python = ">=3.9"
dependencies = [
    "protobuf=={{ .RuntimeVersion }}",{{- if .GenerateGRPC }}
    "grpcio=={{ .GRPCVersion }}",{{- end }}
]

[tool.protopack]
protoc = {{ .ProtocVersion | quote }}

[tool.setuptools.packages.find]
where = ["."]
include = [{{ printf "%s*" .PackageDir | quote }}]
`

func init() {
	register(&Target{
		Name:             "python",
		Extensions:       []string{".py", ".pyi"},
		DefaultImage:     "protopack/python-builder:latest",
		ManifestFile:     "pyproject.toml",
		ManifestTemplate: pythonManifestTemplate,
		ArtifactGlob:     "*.whl",

		GeneratorCommands: func(cfg *config.BuildConfig, protoFiles []string) [][]string {
			src := path.Join(container.Workdir, cfg.SourceDir)
			out := path.Join(container.Workdir, cfg.IntermediateDir, cfg.Target)

			argv := []string{
				"python", "-m", "grpc_tools.protoc",
				"-I", src,
				"--python_out=" + out,
				"--pyi_out=" + out,
			}
			if cfg.GenerateGRPC {
				argv = append(argv, "--grpc_python_out="+out)
			}
			for _, f := range protoFiles {
				argv = append(argv, path.Join(src, f))
			}
			return [][]string{argv}
		},

		FormatterCommands: func(packageDir string) [][]string {
			return [][]string{
				{"black", "--quiet", packageDir},
				{"isort", "--quiet", packageDir},
			}
		},

		BuilderArgv: func(cfg *config.BuildConfig) []string {
			return []string{"python", "-m", "build", "--wheel", "--outdir", "dist", "."}
		},

		PackageDirName: func(packageName string) string {
			return strings.ReplaceAll(packageName, "-", "_")
		},

		KindOf: func(filename string) domain.UnitKind {
			switch {
			case strings.HasSuffix(filename, ".pyi"):
				return domain.KindTypeDecl
			case strings.HasSuffix(filename, "_pb2_grpc.py"):
				return domain.KindService
			default:
				return domain.KindMessage
			}
		},

		EntryFiles: pythonEntryFiles,
	})
}

// pythonEntryFiles writes one __init__.py per package directory,
// re-exporting every generated module and subpackage in that directory.
func pythonEntryFiles(units []domain.GeneratedUnit, idx *protoscan.Index) (map[string]string, error) {
	modules := map[string][]string{}
	subpackages := map[string]map[string]bool{}

	ensureDir := func(dir string) {
		if _, ok := modules[dir]; !ok {
			modules[dir] = nil
		}
		if _, ok := subpackages[dir]; !ok {
			subpackages[dir] = map[string]bool{}
		}
	}
	ensureDir(".")

	for _, u := range units {
		dir := path.Dir(u.Path)
		ensureDir(dir)

		// register every ancestor as a subpackage of its parent
		for d := dir; d != "."; d = path.Dir(d) {
			parent := path.Dir(d)
			ensureDir(parent)
			subpackages[parent][path.Base(d)] = true
		}

		if u.Kind == domain.KindTypeDecl {
			continue
		}
		name := strings.TrimSuffix(path.Base(u.Path), ".py")
		modules[dir] = append(modules[dir], name)
	}

	files := make(map[string]string, len(modules))
	for dir := range modules {
		var names []string
		names = append(names, modules[dir]...)
		for sub := range subpackages[dir] {
			names = append(names, sub)
		}
		sort.Strings(names)

		var sb strings.Builder
		if dir == "." {
			sb.WriteString(rootDocstring(idx))
		} else {
			sb.WriteString("# Generated by protopack. DO NOT EDIT.\n")
		}
		if len(names) > 0 {
			sb.WriteString("\n")
			for _, n := range names {
				fmt.Fprintf(&sb, "from . import %s as %s\n", n, n)
			}
			sb.WriteString("\n__all__ = [\n")
			for _, n := range names {
				fmt.Fprintf(&sb, "    %q,\n", n)
			}
			sb.WriteString("]\n")
		}
		files[path.Join(dir, "__init__.py")] = sb.String()
	}
	return files, nil
}

// rootDocstring lists the discovered services so consumers can see what
// the package exposes without opening the generated modules.
func rootDocstring(idx *protoscan.Index) string {
	var sb strings.Builder
	sb.WriteString("\"\"\"Generated protocol buffer bindings. DO NOT EDIT.\n")
	if idx != nil && idx.ServiceCount() > 0 {
		sb.WriteString("\nServices:\n")
		for _, f := range idx.Files {
			for _, svc := range f.Services {
				if f.Package != "" {
					fmt.Fprintf(&sb, "    %s.%s\n", f.Package, svc)
				} else {
					fmt.Fprintf(&sb, "    %s\n", svc)
				}
			}
		}
	}
	sb.WriteString("\"\"\"\n")
	return sb.String()
}
