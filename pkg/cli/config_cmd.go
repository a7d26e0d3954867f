package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/m-mizutani/octastat/pkg/usecase"
	"github.com/urfave/cli/v3"
)

// NewConfigCommand creates a new config command
func NewConfigCommand() *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "Manage octastat configuration",
		Commands: []*cli.Command{
			{
				Name:  "init",
				Usage: "Generate configuration template",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output path for config file",
					},
					&cli.BoolFlag{
						Name:    "force",
						Aliases: []string{"f"},
						Usage:   "Force overwrite existing file",
					},
				},
				Action: configInitAction,
			},
		},
	}
}

func configInitAction(ctx context.Context, cmd *cli.Command) error {
	service := usecase.NewConfigService()

	outputPath := cmd.String("output")
	if outputPath == "" {
		outputPath = service.GetDefaultPath()
	}

	if err := service.SaveTemplate(outputPath, cmd.Bool("force")); err != nil {
		return fmt.Errorf("failed to create config template: %w", err)
	}

	fmt.Fprintf(os.Stdout, "Config template written to %s\n", outputPath)
	return nil
}

// NewTemplatesCommand creates a command writing the built-in report templates
func NewTemplatesCommand() *cli.Command {
	return &cli.Command{
		Name:  "templates",
		Usage: "Manage report templates",
		Commands: []*cli.Command{
			{
				Name:  "init",
				Usage: "Write the default report templates",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "dir",
						Aliases: []string{"d"},
						Usage:   "Directory to write the templates to",
						Value:   defaultTemplateDir,
					},
					&cli.BoolFlag{
						Name:    "force",
						Aliases: []string{"f"},
						Usage:   "Overwrite existing templates",
					},
				},
				Action: templatesInitAction,
			},
		},
	}
}

func templatesInitAction(ctx context.Context, cmd *cli.Command) error {
	dir := cmd.String("dir")

	written, err := usecase.WriteDefaultTemplates(dir, cmd.Bool("force"))
	if err != nil {
		return fmt.Errorf("failed to write templates: %w", err)
	}

	if len(written) == 0 {
		fmt.Fprintf(os.Stdout, "Templates already exist in %s, use --force to overwrite\n", dir)
		return nil
	}
	for _, path := range written {
		fmt.Fprintf(os.Stdout, "Wrote %s\n", path)
	}
	return nil
}
