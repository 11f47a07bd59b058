package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fivetwenty-io/couchbeans/pkg/couch"
)

// DatabaseResult is printed after a database command.
type DatabaseResult struct {
	Database string `json:"database" yaml:"database"`
	Action   string `json:"action"   yaml:"action"`
}

// NewDatabasesCommand creates the database command group
func NewDatabasesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "db",
		Aliases: []string{"database", "databases"},
		Short:   "Manage databases",
		Long:    "Create and delete CouchDB databases",
	}

	cmd.AddCommand(newDatabasesCreateCommand())
	cmd.AddCommand(newDatabasesDeleteCommand())

	return cmd
}

func newDatabasesCreateCommand() *cobra.Command {
	var (
		shards      int
		replicas    int
		partitioned bool
		ifNotExists bool
	)

	cmd := &cobra.Command{
		Use:   "create DATABASE",
		Short: "Create a database",
		Long:  "Create a database, optionally choosing its shard and replica counts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, cleanup, err := createClient(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			opts := &couch.CreateDatabaseOptions{Partitioned: partitioned}
			if cmd.Flags().Changed("shards") {
				opts.Shards = couch.Intp(shards)
			}

			if cmd.Flags().Changed("replicas") {
				opts.Replicas = couch.Intp(replicas)
			}

			result := DatabaseResult{Database: args[0], Action: "created"}

			err = client.CreateDatabase(cmd.Context(), args[0], opts)
			switch {
			case err == nil:
			case ifNotExists && couch.IsAlreadyExists(err):
				result.Action = "exists"
			default:
				return fmt.Errorf("failed to create database: %w", err)
			}

			return renderDatabaseResult(cmd, result)
		},
	}

	cmd.Flags().IntVarP(&shards, "shards", "q", 0, "number of shards (server default when omitted)")
	cmd.Flags().IntVarP(&replicas, "replicas", "n", 0, "number of replicas (server default when omitted)")
	cmd.Flags().BoolVar(&partitioned, "partitioned", false, "create a partitioned database")
	cmd.Flags().BoolVar(&ifNotExists, "if-not-exists", false, "succeed when the database already exists")

	return cmd
}

func newDatabasesDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete DATABASE",
		Short: "Delete a database",
		Long:  "Delete a database and every document in it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, cleanup, err := createClient(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			err = client.DeleteDatabase(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("failed to delete database: %w", err)
			}

			return renderDatabaseResult(cmd, DatabaseResult{Database: args[0], Action: "deleted"})
		},
	}
}

func renderDatabaseResult(cmd *cobra.Command, result DatabaseResult) error {
	return render(cmd.OutOrStdout(), result, propertyTable([][2]string{
		{"Database", result.Database},
		{"Result", result.Action},
	}))
}
