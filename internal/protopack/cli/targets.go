package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"protopack/internal/protopack/target"
)

// NewTargetsCmd creates the targets command
func NewTargetsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "targets",
		Short: "List the registered language targets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, name := range target.Names() {
				tgt, err := target.Lookup(name)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%-12s manifest=%s artifact=%s\n",
					tgt.Name, tgt.ManifestFile, tgt.ArtifactGlob)
			}
			return nil
		},
	}
}
