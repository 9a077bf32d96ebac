package main

import (
	"github.com/spf13/cobra"

	"github.com/ram-tools/ram-client/pkg/client"
	"github.com/ram-tools/ram-client/pkg/compare"
	"github.com/ram-tools/ram-client/pkg/transport/graphql"
	"github.com/ram-tools/ram-client/pkg/transport/rest"
)

func newCompareCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "compare",
		Short: "Fetch the character collection through each transport and compare",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			policy := cfg.RetryPolicy()

			gqlSource, err := graphql.NewSource(
				client.New(cfg.ClientConfig()), cfg.GraphQLURL, graphql.ResourceCharacters)
			if err != nil {
				return err
			}

			report := &compare.Report{
				Runs: []compare.RunStats{
					compare.Run(ctx, "rest",
						rest.NewCharacterSource(client.New(cfg.ClientConfig()), cfg.RESTBaseURL), policy),
					compare.Run(ctx, "graphql", gqlSource, policy),
					compare.Run(ctx, "graphql-combined",
						graphql.NewCombinedSource(client.New(cfg.ClientConfig()), cfg.GraphQLURL), policy),
				},
			}

			return report.Render(cmd.OutOrStdout())
		},
	}
}
