package commands

import (
	"fmt"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/fivetwenty-io/couchbeans/internal/constants"
	"github.com/fivetwenty-io/couchbeans/pkg/couch"
)

// queryFlags are shared by find and find-all.
type queryFlags struct {
	selector string
	sort     []string
	fields   []string
}

func (q *queryFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&q.selector, "selector", "s", "", "Mango selector as JSON or YAML (default matches everything)")
	cmd.Flags().StringSliceVar(&q.sort, "sort", nil, "sort by field[:asc|desc], repeatable")
	cmd.Flags().StringSliceVar(&q.fields, "fields", nil, "fields to return")
}

func (q *queryFlags) parse() (couch.Selector, *couch.FindOptions, error) {
	selector, err := parseSelector(q.selector)
	if err != nil {
		return nil, nil, err
	}

	sort, err := parseSort(q.sort)
	if err != nil {
		return nil, nil, err
	}

	return selector, &couch.FindOptions{Sort: sort, Fields: q.fields}, nil
}

// NewFindCommand creates the find command
func NewFindCommand() *cobra.Command {
	var (
		query    queryFlags
		page     int
		pageSize int
	)

	cmd := &cobra.Command{
		Use:   "find DATABASE",
		Short: "Query one page of documents",
		Long: `Run a Mango query and display one page of matching documents.

Sorted fields are added to the selector with {"$exists": true}.`,
		Example: `  couch find users --selector '{"age": {"$gt": 21}}' --sort name --page 1`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			selector, opts, err := query.parse()
			if err != nil {
				return err
			}

			opts.Page = page
			opts.PageSize = pageSize

			client, cleanup, err := createClient(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			docs, err := client.Find(cmd.Context(), args[0], selector, opts)
			if err != nil {
				return fmt.Errorf("failed to find documents: %w", err)
			}

			return renderDocuments(cmd, docs)
		},
	}

	query.register(cmd)
	cmd.Flags().IntVar(&page, "page", 0, "zero based page number")
	cmd.Flags().IntVar(&pageSize, "page-size", constants.DefaultPageSize, "documents per page")

	return cmd
}

// NewFindAllCommand creates the find-all command
func NewFindAllCommand() *cobra.Command {
	var query queryFlags

	cmd := &cobra.Command{
		Use:   "find-all DATABASE",
		Short: "Query every matching document",
		Long: `Run a Mango query without paging.

The row count of the database is read first and used as the query limit.
Documents written between the two requests may be missed.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			selector, opts, err := query.parse()
			if err != nil {
				return err
			}

			client, cleanup, err := createClient(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			docs, err := client.FindAll(cmd.Context(), args[0], selector, opts)
			if err != nil {
				return fmt.Errorf("failed to find documents: %w", err)
			}

			return renderDocuments(cmd, docs)
		},
	}

	query.register(cmd)

	return cmd
}

func renderDocuments(cmd *cobra.Command, docs []couch.Document) error {
	return render(cmd.OutOrStdout(), docs, func(table *tablewriter.Table) error {
		table.Header(headers("id", "rev", "fields")...)

		for _, doc := range docs {
			err := table.Append(orNotAvailable(doc.ID()), orNotAvailable(doc.Rev()), documentBody(doc))
			if err != nil {
				return fmt.Errorf("failed to append table row: %w", err)
			}
		}

		return nil
	})
}
