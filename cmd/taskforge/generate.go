package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	coresecrets "github.com/artpar/taskforge/internal/core/secrets"
	"github.com/artpar/taskforge/internal/core/spec"
	"github.com/artpar/taskforge/internal/core/taskdef"
	"github.com/artpar/taskforge/internal/shell/ci"
	shellsecrets "github.com/artpar/taskforge/internal/shell/secrets"
)

// generateArgs carries the eight positional arguments plus flags.
type generateArgs struct {
	YAMLPath          string
	ClusterName       string
	AWSRegion         string
	Registry          string
	ContainerRegistry string
	ImageName         string
	Tag               string
	ServiceName       string

	Output       string
	ValidateOnly bool
}

func newGenerateCmd() *cobra.Command {
	var output string
	var validateOnly bool

	cmd := &cobra.Command{
		Use:   "generate <yaml_file> <cluster_name> <aws_region> <registry> <container_registry> <image_name> <tag> <service_name>",
		Short: "Generate an ECS task definition from a service YAML",
		Long: `Loads the service YAML, applies the service's overrides entry, resolves
secret references against AWS Secrets Manager and writes the assembled task
definition as JSON to the output file and stdout.`,
		Args: cobra.ExactArgs(8),
		RunE: func(cmd *cobra.Command, args []string) error {
			settings := loadSettings(cmd)
			logger := SetupLogger(settings)
			return runGenerate(cmd.Context(), logger, settings, generateArgs{
				YAMLPath:          args[0],
				ClusterName:       args[1],
				AWSRegion:         args[2],
				Registry:          args[3],
				ContainerRegistry: args[4],
				ImageName:         args[5],
				Tag:               args[6],
				ServiceName:       args[7],
				Output:            output,
				ValidateOnly:      validateOnly,
			})
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "task-definition.json", "output file path")
	cmd.Flags().BoolVar(&validateOnly, "validate-only", false, "only validate the configuration, do not generate output")
	return cmd
}

func runGenerate(ctx context.Context, logger *slog.Logger, settings *Settings, args generateArgs) error {
	logger = logger.With("service", args.ServiceName, "cluster", args.ClusterName)

	raw, err := os.ReadFile(args.YAMLPath)
	if err != nil {
		logger.Error("cannot read config file", "path", args.YAMLPath, "error", err)
		return err
	}

	doc, err := spec.Parse(raw)
	if err != nil {
		logger.Error("configuration validation failed", "error", err)
		return err
	}
	svc, err := doc.Resolve(args.ServiceName)
	if err != nil {
		logger.Error("configuration validation failed", "error", err)
		return err
	}

	if args.ValidateOnly {
		logger.Info("configuration validation successful")
		return nil
	}

	refs, err := coresecrets.ParseReferences(svc)
	if err != nil {
		logger.Error("configuration validation failed", "error", err)
		return err
	}
	discoverer := shellsecrets.NewDiscoverer(args.AWSRegion, settings.AWS, logger)
	resolved, warnings, err := coresecrets.Resolve(ctx, refs, discoverer)
	if err != nil {
		logger.Error("secret resolution failed", "error", err)
		return err
	}
	for _, w := range warnings {
		logger.Warn(w)
	}

	task, warnings, err := taskdef.Assemble(svc, taskdef.Inputs{
		ClusterName:       args.ClusterName,
		AWSRegion:         args.AWSRegion,
		Registry:          args.Registry,
		ContainerRegistry: args.ContainerRegistry,
		ImageName:         args.ImageName,
		Tag:               args.Tag,
	}, resolved)
	if err != nil {
		logger.Error("task definition assembly failed", "error", err)
		return err
	}
	for _, w := range warnings {
		logger.Warn(w)
	}

	rendered, err := renderJSON(task)
	if err != nil {
		logger.Error("cannot render task definition", "error", err)
		return err
	}

	if err := os.WriteFile(args.Output, rendered, 0o644); err != nil {
		logger.Error("cannot write output file", "path", args.Output, "error", err)
		return err
	}
	logger.Info("task definition written", "path", args.Output)

	if err := ci.NewWriter().Set("replica_count", svc.ReplicaCount.String()); err != nil {
		logger.Warn("cannot write CI output", "name", "replica_count", "error", err)
	}

	// Stdout carries the document for piping and tests.
	fmt.Println(string(rendered))
	return nil
}

// renderJSON marshals the document with two-space indentation and literal
// URL characters.
func renderJSON(task *taskdef.TaskDefinition) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(task); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
