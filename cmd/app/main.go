package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/starford/larder/internal"
	pkgconfig "github.com/starford/larder/pkg/config"
)

var version = "dev"

func loadOptions(cmd *cli.Command) ([]internal.Option, error) {
	configPath := cmd.String("config")

	cfg := internal.NewDefaultConfig()
	if err := pkgconfig.Load(configPath, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return []internal.Option{
		internal.WithConfig(cfg),
		internal.WithVersion(version),
	}, nil
}

func serve(ctx context.Context, cmd *cli.Command) error {
	opts, err := loadOptions(cmd)
	if err != nil {
		return err
	}
	if err := internal.Run(ctx, opts...); err != nil {
		return fmt.Errorf("app run error: %w", err)
	}
	return nil
}

func mcp(ctx context.Context, cmd *cli.Command) error {
	opts, err := loadOptions(cmd)
	if err != nil {
		return err
	}
	return internal.RunMCP(ctx, opts...)
}

func validate(_ context.Context, cmd *cli.Command) error {
	if cmd.Args().Len() == 0 {
		return fmt.Errorf("validate: at least one recipe file is required")
	}
	return internal.ValidateFiles(os.Stdout, cmd.Args().Slice()...)
}

func nutrition(ctx context.Context, cmd *cli.Command) error {
	if cmd.Args().Len() != 1 {
		return fmt.Errorf("nutrition: exactly one recipe file is required")
	}
	opts, err := loadOptions(cmd)
	if err != nil {
		return err
	}
	return internal.NutritionFile(ctx, os.Stdout, cmd.Args().First(), opts...)
}

func label(_ context.Context, cmd *cli.Command) error {
	if cmd.Args().Len() != 1 {
		return fmt.Errorf("label: exactly one label file is required")
	}
	return internal.LabelFile(os.Stdout, cmd.Args().First(), cmd.String("name"))
}

func main() {
	cmd := &cli.Command{
		Name:    "larder",
		Usage:   "Recipe Markdown compiler with nutrition, shopping lists and a live recipe index",
		Version: version,
		Action:  serve,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "Path to config file",
				DefaultText: "config/config.yaml",
				Value:       "config/config.yaml",
				Sources:     cli.EnvVars("APP_CONFIG_FILE"),
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Run the HTTP API, file watcher and event stream",
				Action: serve,
			},
			{
				Name:   "mcp",
				Usage:  "Serve recipe tools over MCP on stdio",
				Action: mcp,
			},
			{
				Name:      "validate",
				Usage:     "Check recipe files and report problems",
				ArgsUsage: "<file...>",
				Action:    validate,
			},
			{
				Name:      "nutrition",
				Usage:     "Print nutrition facts for a recipe file as JSON",
				ArgsUsage: "<file>",
				Action:    nutrition,
			},
			{
				Name:      "label",
				Usage:     "Convert a nutrition label text file into a catalog entry",
				ArgsUsage: "<file>",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "name",
						Usage: "Ingredient name (defaults to the file name)",
					},
				},
				Action: label,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
