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

const typescriptManifestTemplate = `{
  "name": {{ .Name | quote }},
  "version": {{ .Version | quote }},
  "description": "Generated protocol buffer bindings.",
  "main": "src/index.js",
  "types": "src/index.d.ts",
  "files": [
    "src"
  ],
  "dependencies": {
    "protobufjs": {{ printf "^%s" .RuntimeVersion | quote }}
  }
}
`

func init() {
	register(&Target{
		Name:             "typescript",
		Extensions:       []string{".js", ".ts"},
		DefaultImage:     "protopack/node-builder:latest",
		ManifestFile:     "package.json",
		ManifestTemplate: typescriptManifestTemplate,
		ArtifactGlob:     "*.tgz",

		GeneratorCommands: func(cfg *config.BuildConfig, protoFiles []string) [][]string {
			src := path.Join(container.Workdir, cfg.SourceDir)
			out := path.Join(container.Workdir, cfg.IntermediateDir, cfg.Target)

			var cmds [][]string
			for _, f := range protoFiles {
				dir := path.Dir(f)
				base := strings.TrimSuffix(path.Base(f), ".proto")
				outDir := path.Join(out, dir)
				jsOut := path.Join(outDir, base+"_pb.js")
				dtsOut := path.Join(outDir, base+"_pb.d.ts")

				cmds = append(cmds,
					[]string{"mkdir", "-p", outDir},
					[]string{"npx", "pbjs", "-t", "static-module", "-w", "commonjs",
						"-o", jsOut, path.Join(src, f)},
					[]string{"npx", "pbts", "-o", dtsOut, jsOut},
				)
				if cfg.GenerateWeb {
					cmds = append(cmds, []string{"npx", "pbjs", "-t", "json-module", "-w", "es6",
						"-o", path.Join(outDir, base+"_pb.web.js"), path.Join(src, f)})
				}
			}
			return cmds
		},

		FormatterCommands: func(packageDir string) [][]string {
			return [][]string{
				{"npx", "prettier", "--write", "--log-level", "warn", packageDir},
			}
		},

		BuilderArgv: func(cfg *config.BuildConfig) []string {
			return []string{"npm", "pack", "--pack-destination", "dist"}
		},

		PackageDirName: func(packageName string) string {
			return "src"
		},

		KindOf: func(filename string) domain.UnitKind {
			switch {
			case strings.HasSuffix(filename, ".d.ts"):
				return domain.KindTypeDecl
			default:
				return domain.KindMessage
			}
		},

		EntryFiles: typescriptEntryFiles,
	})
}

// typescriptEntryFiles writes index.js and index.d.ts at the package
// root, re-exporting every generated module under a collision-free name.
func typescriptEntryFiles(units []domain.GeneratedUnit, idx *protoscan.Index) (map[string]string, error) {
	type export struct {
		name string
		rel  string
	}

	byName := map[string]string{}
	var exports []export
	for _, u := range units {
		if u.Kind == domain.KindTypeDecl || !strings.HasSuffix(u.Path, ".js") {
			continue
		}
		rel := "./" + strings.TrimSuffix(u.Path, ".js")
		name := path.Base(rel)
		if prev, clash := byName[name]; clash && prev != rel {
			// fall back to the full path to disambiguate
			name = strings.ReplaceAll(strings.TrimPrefix(rel, "./"), "/", "_")
		}
		byName[name] = rel
		exports = append(exports, export{name: name, rel: rel})
	}
	sort.Slice(exports, func(i, j int) bool { return exports[i].name < exports[j].name })

	var js, dts strings.Builder
	js.WriteString("// Generated by protopack. DO NOT EDIT.\n\"use strict\";\n\nmodule.exports = {\n")
	dts.WriteString("// Generated by protopack. DO NOT EDIT.\n")
	for _, e := range exports {
		fmt.Fprintf(&js, "  %s: require(%q),\n", e.name, e.rel)
		fmt.Fprintf(&dts, "export * as %s from %q;\n", e.name, e.rel)
	}
	js.WriteString("};\n")

	return map[string]string{
		"index.js":   js.String(),
		"index.d.ts": dts.String(),
	}, nil
}
