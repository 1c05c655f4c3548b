package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/fx"

	"github.com/polkiloo/prowriters/internal/config"
	"github.com/polkiloo/prowriters/internal/di"
	"github.com/polkiloo/prowriters/internal/domain/model"
	"github.com/polkiloo/prowriters/internal/seed"
	"github.com/polkiloo/prowriters/internal/usecase"
)

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "prowriters",
		Short:         "Writing services marketplace",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newServeCommand(), newSeedCommand(), newGrantRoleCommand())
	return root
}

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve [flags]",
		Short: "Run the HTTP API, chat relay and notification dispatcher",
		Long: "Run the HTTP API. Flags are parsed by the configuration loader: " +
			"-a address, -d database URI, -g gateway URL, --jwt-secret, --log-level, " +
			"--notify-workers, --shutdown-timeout, --gateway-timeout.",
		DisableFlagParsing: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Parse(args)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			app := fx.New(
				fx.Provide(func() context.Context { return ctx }),
				di.Module(fx.Replace(cfg)),
			)
			return run(ctx, app)
		},
	}
}

func newSeedCommand() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load the service catalog into the database",
		Long:  "Upsert services and packages. Without --file the built-in catalog is used. Configuration is read from the environment.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			services, err := seed.Load(file)
			if err != nil {
				return err
			}
			cfg, err := config.Parse(nil)
			if err != nil {
				return err
			}

			var seeder *seed.Seeder
			ctx := cmd.Context()
			app := fx.New(
				fx.NopLogger,
				fx.Provide(func() context.Context { return ctx }),
				di.Tooling(fx.Replace(cfg)),
				fx.Populate(&seeder),
			)
			return once(ctx, app, func(ctx context.Context) error {
				res, err := seeder.Run(ctx, services)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "seeded %d services, %d packages\n", res.Services, res.Packages)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "YAML catalog to load instead of the built-in one")
	return cmd
}

func newGrantRoleCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "grant-role <email> <role>",
		Short: "Assign customer, support or admin role to an account",
		Args: func(cmd *cobra.Command, args []string) error {
			if err := cobra.ExactArgs(2)(cmd, args); err != nil {
				return err
			}
			if !model.Role(args[1]).Valid() {
				return fmt.Errorf("unknown role %q", args[1])
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Parse(nil)
			if err != nil {
				return err
			}

			var auth *usecase.AuthUseCase
			ctx := cmd.Context()
			app := fx.New(
				fx.NopLogger,
				fx.Provide(func() context.Context { return ctx }),
				di.Tooling(fx.Replace(cfg)),
				fx.Populate(&auth),
			)
			return once(ctx, app, func(ctx context.Context) error {
				if err := auth.GrantRole(ctx, args[0], model.Role(args[1])); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s is now %s\n", args[0], args[1])
				return nil
			})
		},
	}
}
