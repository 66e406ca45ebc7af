package postprocess

import (
	"context"

	"github.com/hashicorp/go-multierror"

	"protopack/internal/protopack/target"
	"protopack/internal/protopack/toolchain"
	"protopack/internal/protopack/workspace"
	"protopack/pkg/logger"
)

// Format runs the target's formatters over the canonical package tree on
// the host. Formatting does not affect the correctness of the generated
// code, so the coordinator treats a returned error as a warning; Format
// still attempts every formatter before reporting.
func Format(ctx context.Context, runner toolchain.Runner, ws *workspace.Workspace, tgt *target.Target, log *logger.Logger) error {
	log = log.WithField("component", "postprocess")

	var result *multierror.Error
	for _, argv := range tgt.FormatterCommands(ws.PackageDir) {
		if _, err := runner.Invoke(ctx, argv[0], argv[1:], ws.Output); err != nil {
			log.Warn("formatter failed", "tool", argv[0], "error", err)
			result = multierror.Append(result, err)
		}
	}
	return result.ErrorOrNil()
}
