package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"protopack/internal/protopack/target"
	"protopack/pkg/config"
	"protopack/pkg/errors"
)

// NewCleanCmd creates the clean command
func NewCleanCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clean <target>",
		Short: "Remove the intermediate, output and artifact trees for a target",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			tgt, err := target.Lookup(args[0])
			if err != nil {
				return err
			}

			bc, err := config.NewBuildConfig(cfg, tgt.Name)
			if err != nil {
				return err
			}

			for _, dir := range []string{
				filepath.Join(bc.Root, bc.IntermediateDir, tgt.Name),
				filepath.Join(bc.Root, bc.PackagesDir, tgt.Name),
				filepath.Join(bc.Root, bc.ArtifactsDir, tgt.Name),
			} {
				if err := os.RemoveAll(dir); err != nil {
					return errors.WrapWorkspaceError(dir, "clean", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "removed %s\n", dir)
			}
			return nil
		},
	}
}
