package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ghorer-khabar/mealclub/internal/core/service"
	"github.com/ghorer-khabar/mealclub/internal/infrastructure/db/mongo"
)

func seedCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Wipe the database and load the demo data set",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := commonRun(cmd)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			client, db, err := mongo.Connect(ctx, mongo.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
			if err != nil {
				return err
			}
			defer client.Disconnect(ctx)

			if err := mongo.EnsureIndexes(ctx, db); err != nil {
				return fmt.Errorf("ensure indexes: %w", err)
			}

			seeder := service.NewSeedService(
				mongo.NewMemberRepository(db),
				mongo.NewPollRepository(db),
				mongo.NewPackageRepository(db),
				log,
			)
			summary, err := seeder.Seed(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "seeded %d packages, %d members, %d polls\n",
				len(summary.Packages), len(summary.Members), len(summary.Polls))
			return nil
		},
	}
}
