package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fivetwenty-io/couchbeans/pkg/couch"
)

// DeleteResult is printed after a document delete.
type DeleteResult struct {
	Database string `json:"database" yaml:"database"`
	ID       string `json:"id"       yaml:"id"`
	Deleted  bool   `json:"deleted"  yaml:"deleted"`
}

// NewDocumentsCommand creates the document command group
func NewDocumentsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "doc",
		Aliases: []string{"docs", "document", "documents"},
		Short:   "Manage documents",
		Long:    "Get, put, patch and delete documents by ID",
	}

	cmd.AddCommand(newDocumentsGetCommand())
	cmd.AddCommand(newDocumentsPutCommand())
	cmd.AddCommand(newDocumentsPatchCommand())
	cmd.AddCommand(newDocumentsDeleteCommand())

	return cmd
}

func newDocumentsGetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get DATABASE ID",
		Short: "Get a document",
		Long:  "Display the current revision of a document",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, cleanup, err := createClient(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			doc, err := client.GetDocument(cmd.Context(), args[0], args[1])
			if err != nil {
				return fmt.Errorf("failed to get document: %w", err)
			}

			return render(cmd.OutOrStdout(), doc, propertyTable(documentRows(doc)))
		},
	}
}

func newDocumentsPutCommand() *cobra.Command {
	var (
		data        string
		file        string
		noOverwrite bool
		strict      bool
	)

	cmd := &cobra.Command{
		Use:   "put DATABASE ID",
		Short: "Write a document",
		Long: `Write a document, replacing the current revision.

The stored revision is looked up and sent with the write. Use --no-overwrite
to fail when the document exists, or --strict to send the document exactly
as given, including its own _rev.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := readDocumentInput(cmd, data, file)
			if err != nil {
				return err
			}

			client, cleanup, err := createClient(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			result, err := client.PutDocument(cmd.Context(), args[0], args[1], doc, &couch.PutOptions{
				NoOverwrite: noOverwrite,
				Strict:      strict,
			})
			if err != nil {
				return fmt.Errorf("failed to put document: %w", err)
			}

			return renderDocumentResult(cmd, result)
		},
	}

	addDocumentInputFlags(cmd, &data, &file)
	cmd.Flags().BoolVar(&noOverwrite, "no-overwrite", false, "fail if the document already exists")
	cmd.Flags().BoolVar(&strict, "strict", false, "do not look up the current revision")

	return cmd
}

func newDocumentsPatchCommand() *cobra.Command {
	var (
		data   string
		file   string
		strict bool
	)

	cmd := &cobra.Command{
		Use:   "patch DATABASE ID",
		Short: "Merge fields into a document",
		Long: `Merge top-level fields into a document.

Fields in the patch replace the stored ones; nested objects are replaced, not
merged. A missing document is created unless --strict is set.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			diff, err := readDocumentInput(cmd, data, file)
			if err != nil {
				return err
			}

			client, cleanup, err := createClient(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			result, err := client.PatchDocument(cmd.Context(), args[0], args[1], diff, &couch.PatchOptions{Strict: strict})
			if err != nil {
				return fmt.Errorf("failed to patch document: %w", err)
			}

			return renderDocumentResult(cmd, result)
		},
	}

	addDocumentInputFlags(cmd, &data, &file)
	cmd.Flags().BoolVar(&strict, "strict", false, "fail if the document does not exist")

	return cmd
}

func newDocumentsDeleteCommand() *cobra.Command {
	var strict bool

	cmd := &cobra.Command{
		Use:   "delete DATABASE ID",
		Short: "Delete a document",
		Long:  "Delete the current revision of a document. A missing document is reported, not an error, unless --strict is set.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, cleanup, err := createClient(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			deleted, err := client.DeleteDocument(cmd.Context(), args[0], args[1], &couch.DeleteOptions{Strict: strict})
			if err != nil {
				return fmt.Errorf("failed to delete document: %w", err)
			}

			result := DeleteResult{Database: args[0], ID: args[1], Deleted: deleted}

			return render(cmd.OutOrStdout(), result, propertyTable([][2]string{
				{"Database", result.Database},
				{"ID", result.ID},
				{"Deleted", fmt.Sprintf("%t", result.Deleted)},
			}))
		},
	}

	cmd.Flags().BoolVar(&strict, "strict", false, "fail if the document does not exist")

	return cmd
}

func addDocumentInputFlags(cmd *cobra.Command, data, file *string) {
	cmd.Flags().StringVarP(data, "data", "d", "", "document as JSON or YAML")
	cmd.Flags().StringVarP(file, "file", "f", "", "read the document from a JSON or YAML file (- for stdin)")
}

func renderDocumentResult(cmd *cobra.Command, result *couch.DocumentResult) error {
	return render(cmd.OutOrStdout(), result, propertyTable([][2]string{
		{"ID", result.ID},
		{"Rev", result.Rev},
		{"OK", fmt.Sprintf("%t", result.OK)},
	}))
}
