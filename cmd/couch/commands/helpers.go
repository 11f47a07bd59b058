package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"

	"github.com/fivetwenty-io/couchbeans/internal/constants"
	"github.com/fivetwenty-io/couchbeans/internal/events"
	"github.com/fivetwenty-io/couchbeans/pkg/couch"
	"github.com/fivetwenty-io/couchbeans/pkg/couchclient"
)

// EnvKeyReplacer maps flag names to environment variables, so --max-retries
// is read from COUCH_MAX_RETRIES.
var EnvKeyReplacer = strings.NewReplacer("-", "_")

// stdinPath makes --file read standard input.
const stdinPath = "-"

// createClient builds a client from the bound flags, config file and
// environment. The returned cleanup closes the NATS connection, if any.
func createClient(cmd *cobra.Command) (couch.Client, func(), error) {
	url := viper.GetString("url")
	if url == "" {
		return nil, nil, constants.ErrNoURLConfigured
	}

	logger, err := newLogger(cmd.ErrOrStderr())
	if err != nil {
		return nil, nil, err
	}

	password, err := resolvePassword(cmd)
	if err != nil {
		return nil, nil, err
	}

	config := &couch.Config{
		URL:        url,
		Username:   viper.GetString("username"),
		Password:   password,
		MaxRetries: viper.GetInt("max-retries"),
		Timeout:    viper.GetDuration("timeout"),
		Verbose:    viper.GetBool("verbose"),
		Debug:      viper.GetBool("debug"),
		Logger:     logger,
	}

	cleanup := func() {}

	natsURL := viper.GetString("nats-url")
	if natsURL != "" {
		notifier, err := events.Connect(natsURL, viper.GetString("nats-subject"))
		if err != nil {
			return nil, nil, err
		}

		config.Notifier = notifier
		cleanup = func() {
			_ = notifier.Close()
		}
	}

	client, err := couchclient.New(config)
	if err != nil {
		cleanup()

		return nil, nil, fmt.Errorf("failed to create client: %w", err)
	}

	return client, cleanup, nil
}

// newLogger writes structured logs to w. Verbose and debug runs log at
// debug level.
func newLogger(w io.Writer) (couch.Logger, error) {
	level := slog.LevelInfo
	if viper.GetBool("verbose") || viper.GetBool("debug") {
		level = slog.LevelDebug
	}

	options := &slog.HandlerOptions{Level: level}

	switch format := viper.GetString("log-format"); format {
	case constants.FormatJSON:
		return couch.NewSlogLogger(slog.New(slog.NewJSONHandler(w, options))), nil
	case constants.FormatText, "":
		return couch.NewSlogLogger(slog.New(slog.NewTextHandler(w, options))), nil
	default:
		return nil, fmt.Errorf("%w: %s", constants.ErrInvalidLogFormat, format)
	}
}

// resolvePassword prompts for a password when a username is configured
// without one and stdin is a terminal.
func resolvePassword(cmd *cobra.Command) (string, error) {
	password := viper.GetString("password")
	if password != "" || viper.GetString("username") == "" {
		return password, nil
	}

	fd := int(os.Stdin.Fd()) // #nosec G115 -- file descriptors fit in int
	if !term.IsTerminal(fd) {
		return "", nil
	}

	_, _ = fmt.Fprint(cmd.ErrOrStderr(), "Password: ")

	bytePassword, err := term.ReadPassword(fd)
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}

	_, _ = fmt.Fprintln(cmd.ErrOrStderr())

	return string(bytePassword), nil
}

// outputFormat returns the validated --output value.
func outputFormat() (string, error) {
	switch format := viper.GetString("output"); format {
	case constants.FormatJSON, constants.FormatYAML, constants.FormatTable:
		return format, nil
	case "":
		return constants.FormatTable, nil
	default:
		return "", fmt.Errorf("%w: %s", constants.ErrInvalidOutput, format)
	}
}

// render writes data as JSON or YAML, or calls table for table output.
func render(w io.Writer, data interface{}, table func(*tablewriter.Table) error) error {
	format, err := outputFormat()
	if err != nil {
		return err
	}

	switch format {
	case constants.FormatJSON:
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", strings.Repeat(" ", constants.JSONIndentSize))

		return encoder.Encode(data)
	case constants.FormatYAML:
		encoder := yaml.NewEncoder(w)
		defer func() {
			_ = encoder.Close()
		}()

		return encoder.Encode(data)
	default:
		writer := tablewriter.NewWriter(w)

		err := table(writer)
		if err != nil {
			return err
		}

		err = writer.Render()
		if err != nil {
			return fmt.Errorf("failed to render table: %w", err)
		}

		return nil
	}
}

// propertyTable renders name/value pairs.
func propertyTable(rows [][2]string) func(*tablewriter.Table) error {
	return func(table *tablewriter.Table) error {
		table.Header(headers("property", "value")...)

		for _, row := range rows {
			err := table.Append(row[0], row[1])
			if err != nil {
				return fmt.Errorf("failed to append table row: %w", err)
			}
		}

		return nil
	}
}

// headers title-cases column names.
func headers(names ...string) []any {
	caser := cases.Title(language.English)
	result := make([]any, 0, len(names))

	for _, name := range names {
		result = append(result, caser.String(name))
	}

	return result
}

// documentRows lists the fields of a document, "_id" and "_rev" first.
func documentRows(doc couch.Document) [][2]string {
	keys := make([]string, 0, len(doc))
	for key := range doc {
		if key != constants.FieldID && key != constants.FieldRev {
			keys = append(keys, key)
		}
	}

	sort.Strings(keys)

	rows := [][2]string{
		{constants.FieldID, orNotAvailable(doc.ID())},
		{constants.FieldRev, orNotAvailable(doc.Rev())},
	}

	for _, key := range keys {
		rows = append(rows, [2]string{key, formatValue(doc[key])})
	}

	return rows
}

// documentBody renders the user fields of a document as compact JSON.
func documentBody(doc couch.Document) string {
	body := doc.Clone()
	delete(body, constants.FieldID)
	delete(body, constants.FieldRev)

	return formatValue(map[string]interface{}(body))
}

// formatValue renders a JSON value for a table cell.
func formatValue(value interface{}) string {
	if s, ok := value.(string); ok {
		return truncate(s)
	}

	encoded, err := json.Marshal(value)
	if err != nil {
		return fmt.Sprintf("%v", value)
	}

	return truncate(string(encoded))
}

func truncate(s string) string {
	runes := []rune(s)
	if len(runes) <= constants.StringTruncationLength {
		return s
	}

	return string(runes[:constants.StringTruncationLength-3]) + "..."
}

func orNotAvailable(s string) string {
	if s == "" {
		return constants.NotAvailable
	}

	return s
}

// readDocumentInput returns the object given by --data or --file.
func readDocumentInput(cmd *cobra.Command, data, file string) (couch.Document, error) {
	var raw []byte

	switch {
	case data != "" && file != "":
		return nil, constants.ErrBothDataAndFile
	case data != "":
		raw = []byte(data)
	case file == stdinPath:
		content, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return nil, fmt.Errorf("failed to read stdin: %w", err)
		}

		raw = content
	case file != "":
		content, err := readInputFile(file)
		if err != nil {
			return nil, err
		}

		raw = content
	default:
		return nil, constants.ErrNoDocumentData
	}

	object, err := parseObject(raw)
	if err != nil {
		return nil, err
	}

	return couch.Document(object), nil
}

// parseSelector parses a Mango selector; an empty string matches everything.
func parseSelector(raw string) (couch.Selector, error) {
	if strings.TrimSpace(raw) == "" {
		return couch.Selector{}, nil
	}

	object, err := parseObject([]byte(raw))
	if err != nil {
		return nil, fmt.Errorf("parsing selector: %w", err)
	}

	return couch.Selector(object), nil
}

// parseObject accepts a JSON object, falling back to YAML.
func parseObject(raw []byte) (map[string]interface{}, error) {
	var object map[string]interface{}

	jsonErr := json.Unmarshal(raw, &object)
	if jsonErr == nil && object != nil {
		return object, nil
	}

	object = nil

	yamlErr := yaml.Unmarshal(raw, &object)
	if yamlErr != nil || object == nil {
		if jsonErr != nil {
			return nil, fmt.Errorf("%w: %w", constants.ErrInvalidDocument, jsonErr)
		}

		return nil, constants.ErrInvalidDocument
	}

	return object, nil
}

// parseSort turns "field" or "field:asc|desc" flags into a sort.
func parseSort(specs []string) (couch.Sort, error) {
	result := make(couch.Sort, 0, len(specs))

	for _, spec := range specs {
		field, direction, _ := strings.Cut(spec, ":")
		if field == "" {
			return nil, fmt.Errorf("%w: %q", constants.ErrInvalidSortFormat, spec)
		}

		switch strings.ToLower(direction) {
		case "", "asc":
			result = append(result, couch.Asc(field))
		case "desc":
			result = append(result, couch.Desc(field))
		default:
			return nil, fmt.Errorf("%w: %q", constants.ErrInvalidSortFormat, spec)
		}
	}

	return result, nil
}

// readInputFile reads a document file after rejecting traversal and
// non-regular paths.
func readInputFile(path string) ([]byte, error) {
	for _, part := range strings.Split(filepath.ToSlash(path), "/") {
		if part == ".." {
			return nil, fmt.Errorf("%w: %s", constants.ErrDirectoryTraversalDetected, path)
		}
	}

	cleanPath := filepath.Clean(path)

	info, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("file not accessible: %w", err)
	}

	if !info.Mode().IsRegular() {
		return nil, fmt.Errorf("%w: %s", constants.ErrNotRegularFile, path)
	}

	// #nosec G304 -- path checked above
	content, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	return content, nil
}
