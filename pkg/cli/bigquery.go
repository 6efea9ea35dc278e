package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/bqchat/pkg/cli/config"
	bqsvc "github.com/secmon-lab/bqchat/pkg/service/bigquery"
	"github.com/secmon-lab/bqchat/pkg/utils/safe"
	"github.com/urfave/cli/v3"
)

// bigqueryCommand builds a one-shot command printing what run renders.
func bigqueryCommand(name, usage, argsUsage string, run func(ctx context.Context, svc *bqsvc.Service, args []string) (string, error)) *cli.Command {
	var (
		bqCfg      config.BigQuery
		storageCfg config.Storage
	)

	return &cli.Command{
		Name:      name,
		Usage:     usage,
		ArgsUsage: argsUsage,
		Flags:     joinFlags(bqCfg.Flags(), storageCfg.Flags()),
		Action: func(ctx context.Context, c *cli.Command) error {
			cfg := chatConfig{bigquery: bqCfg, storage: storageCfg}
			storageClient, closer, err := cfg.storageClient(ctx)
			defer closer()
			if err != nil {
				return err
			}

			svc := bqCfg.ServiceFactory(storageClient, storageCfg.Prefix())(ctx)
			defer safe.Close(ctx, svc)

			out, err := run(ctx, svc, c.Args().Slice())
			if err != nil {
				return err
			}
			fmt.Fprintln(c.Root().Writer, out)
			return nil
		},
	}
}

func cmdTables() *cli.Command {
	return bigqueryCommand("tables", "List accessible BigQuery tables", "",
		func(ctx context.Context, svc *bqsvc.Service, args []string) (string, error) {
			return svc.ListAccessibleTables(ctx).String(), nil
		})
}

func cmdDescribe() *cli.Command {
	return bigqueryCommand("describe", "Describe a BigQuery table", "<[project.]dataset.table | table>",
		func(ctx context.Context, svc *bqsvc.Service, args []string) (string, error) {
			if len(args) != 1 {
				return "", goerr.New("exactly one table identifier is required")
			}
			return svc.DescribeTable(ctx, args[0]).String(), nil
		})
}

func cmdQuery() *cli.Command {
	return bigqueryCommand("query", "Run a BigQuery SQL query", "<sql>",
		func(ctx context.Context, svc *bqsvc.Service, args []string) (string, error) {
			sql := strings.TrimSpace(strings.Join(args, " "))
			if sql == "" {
				return "", goerr.New("SQL query is required")
			}
			return svc.ExecuteQuery(ctx, sql).String(), nil
		})
}
