package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"protopack/internal/protopack/container"
	"protopack/internal/protopack/pipeline"
	"protopack/internal/protopack/target"
	"protopack/internal/protopack/toolchain"
	"protopack/internal/protopack/workspace"
	"protopack/pkg/config"
	"protopack/pkg/logger"
	"protopack/pkg/semver"
)

// NewBuildCmd creates the build command
func NewBuildCmd() *cobra.Command {
	var (
		clean          bool
		protocVersion  string
		grpcVersion    string
		runtimeVersion string
		packageVersion string
		image          string
		grpcStubs      bool
		noGrpcStubs    bool
		webStubs       bool
	)

	cmd := &cobra.Command{
		Use:   "build <target>",
		Short: "Run the full build pipeline for a target language",
		Long: `Build generates bindings for every proto source, relocates them into
the canonical package tree, synthesizes entry points, writes the package
manifest and produces the final distributable under artifacts/<target>/.`,
		Args: cobra.ExactArgs(1),
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

			flags := cmd.Flags()
			if flags.Changed("protoc-version") {
				bc.ProtocVersion = protocVersion
			}
			if flags.Changed("grpc-version") {
				bc.GRPCVersion = grpcVersion
			}
			if flags.Changed("runtime-version") {
				bc.RuntimeVersion = runtimeVersion
			}
			if flags.Changed("package-version") {
				if !semver.IsValid(packageVersion) {
					return fmt.Errorf("invalid package version %q: expected MAJOR.MINOR.PATCH", packageVersion)
				}
				bc.PackageVersion = packageVersion
			}
			if flags.Changed("image") {
				bc.ContainerImage = image
			}
			bc.GenerateGRPC = grpcStubs && !noGrpcStubs
			bc.GenerateWeb = webStubs
			bc.Clean = clean
			bc.Verbose = verbose

			log := logger.WithField("component", "cli")
			host := toolchain.NewInvoker(bc.InvokeTimeout, bc.Verbose, log)
			acquire := func(ctx context.Context, ws *workspace.Workspace) (pipeline.Executor, error) {
				return container.Acquire(ctx, host, bc.ContainerEngine, tgt.Image(&bc), ws.Root, bc.ReadyDelay, log)
			}

			coordinator := pipeline.NewCoordinator(&bc, tgt, workspace.NewManager(log), host, acquire, log)
			artifact, err := coordinator.Run(cmd.Context())
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), artifact.Path)
			return nil
		},
	}

	cmd.Flags().BoolVar(&clean, "clean", false, "Wipe intermediate and output trees before building")
	cmd.Flags().StringVar(&protocVersion, "protoc-version", "", "Override the pinned protoc version")
	cmd.Flags().StringVar(&grpcVersion, "grpc-version", "", "Override the pinned RPC framework version")
	cmd.Flags().StringVar(&runtimeVersion, "runtime-version", "", "Override the pinned protobuf runtime version")
	cmd.Flags().StringVar(&packageVersion, "package-version", "", "Override the emitted package version")
	cmd.Flags().StringVar(&image, "image", "", "Override the build container image")
	cmd.Flags().BoolVar(&grpcStubs, "grpc-stubs", true, "Generate RPC service stubs")
	cmd.Flags().BoolVar(&noGrpcStubs, "no-grpc-stubs", false, "Skip RPC service stub generation")
	cmd.Flags().BoolVar(&webStubs, "web-stubs", false, "Generate web-transport stubs where the target supports them")
	cmd.MarkFlagsMutuallyExclusive("grpc-stubs", "no-grpc-stubs")

	return cmd
}
