package commands

import (
	"fmt"
	"os"
	"sort"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/fivetwenty-io/ods-client/internal/constants"
	"github.com/fivetwenty-io/ods-client/pkg/ods"
)

// entryFlags are the flags shared by every entry subcommand.
type entryFlags struct {
	datastoreName string
	scope         string
	id            string
}

func (f *entryFlags) register(cmd *cobra.Command, withID bool) {
	cmd.Flags().StringVarP(&f.datastoreName, "datastore-name", "d", "", "ordered data store name")
	cmd.Flags().StringVarP(&f.scope, "scope", "s", constants.DefaultScope, "data store scope")

	if withID {
		cmd.Flags().StringVarP(&f.id, "id", "i", "", "entry id")
	}
}

func (f *entryFlags) requireID() error {
	if f.id == "" {
		return constants.ErrIDMissing
	}

	return nil
}

// NewOrderedDatastoreCommand creates the ordered-datastore command group.
func NewOrderedDatastoreCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "ordered-datastore",
		Aliases: []string{"ods", "ordered-data-store"},
		Short:   "Manage ordered data store entries",
		Long:    "List, create, read, update, delete and increment entries of an ordered data store",
	}

	cmd.AddCommand(newOrderedDatastoreListCommand())
	cmd.AddCommand(newOrderedDatastoreCreateCommand())
	cmd.AddCommand(newOrderedDatastoreGetCommand())
	cmd.AddCommand(newOrderedDatastoreUpdateCommand())
	cmd.AddCommand(newOrderedDatastoreDeleteCommand())
	cmd.AddCommand(newOrderedDatastoreIncrementCommand())
	cmd.AddCommand(newOrderedDatastoreImportCommand())

	return cmd
}

func newOrderedDatastoreListCommand() *cobra.Command {
	var (
		flags       entryFlags
		maxPageSize int
		pageToken   string
		orderBy     string
		filter      string
		allPages    bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List entries",
		Long:  "List the entries of an ordered data store scope, one page at a time or all at once",
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := outputFormat()
			if err != nil {
				return err
			}

			ref, err := datastoreRef(cmd, &flags)
			if err != nil {
				return err
			}

			params := &ods.ListEntriesParams{DatastoreRef: ref}

			if cmd.Flags().Changed("max-page-size") {
				params.MaxPageSize = &maxPageSize
			}

			if cmd.Flags().Changed("page-token") {
				token := ods.PageToken(pageToken)
				params.PageToken = &token
			}

			if cmd.Flags().Changed("order-by") {
				params.OrderBy = &orderBy
			}

			if cmd.Flags().Changed("filter") {
				params.Filter = &filter
			}

			client, err := newODSClient(cmd)
			if err != nil {
				return err
			}

			if allPages {
				entries, err := ods.ListAllEntries(cmd.Context(), client.OrderedDataStores(), params)
				if err != nil {
					return fmt.Errorf("failed to list entries: %w", err)
				}

				return renderEntries(cmd.OutOrStdout(), format, entries, "")
			}

			page, err := client.OrderedDataStores().ListEntries(cmd.Context(), params)
			if err != nil {
				return fmt.Errorf("failed to list entries: %w", err)
			}

			return renderEntries(cmd.OutOrStdout(), format, page.Entries, page.NextPageToken)
		},
	}

	flags.register(cmd, false)
	cmd.Flags().IntVar(&maxPageSize, "max-page-size", constants.StandardPageSize, "maximum number of entries per page")
	cmd.Flags().StringVar(&pageToken, "page-token", "", "token of the page to fetch")
	cmd.Flags().StringVar(&orderBy, "order-by", "", "ordering, e.g. \"desc\"")
	cmd.Flags().StringVar(&filter, "filter", "", "value filter, e.g. \"entry >= 10 && entry <= 50\"")
	cmd.Flags().BoolVar(&allPages, "all", false, "fetch all pages")

	return cmd
}

func newOrderedDatastoreCreateCommand() *cobra.Command {
	var (
		flags entryFlags
		value int64
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create an entry",
		Long:  "Create a new entry; fails if the id already exists in the scope",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEntryCommand(cmd, &flags, func(client ods.OrderedDataStoresClient, ref ods.DatastoreRef) (*ods.Entry, error) {
				return client.CreateEntry(cmd.Context(), &ods.CreateEntryParams{
					DatastoreRef: ref,
					ID:           flags.id,
					Value:        value,
				})
			})
		},
	}

	flags.register(cmd, true)
	cmd.Flags().Int64Var(&value, "value", 0, "entry value")
	_ = cmd.MarkFlagRequired("value")

	return cmd
}

func newOrderedDatastoreGetCommand() *cobra.Command {
	var flags entryFlags

	cmd := &cobra.Command{
		Use:   "get",
		Short: "Get an entry",
		Long:  "Display a single entry of an ordered data store",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEntryCommand(cmd, &flags, func(client ods.OrderedDataStoresClient, ref ods.DatastoreRef) (*ods.Entry, error) {
				return client.GetEntry(cmd.Context(), &ods.EntryParams{DatastoreRef: ref, ID: flags.id})
			})
		},
	}

	flags.register(cmd, true)

	return cmd
}

func newOrderedDatastoreUpdateCommand() *cobra.Command {
	var (
		flags        entryFlags
		value        int64
		allowMissing bool
	)

	cmd := &cobra.Command{
		Use:   "update",
		Short: "Update an entry",
		Long:  "Replace the value of an entry, optionally creating it when it does not exist",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEntryCommand(cmd, &flags, func(client ods.OrderedDataStoresClient, ref ods.DatastoreRef) (*ods.Entry, error) {
				params := &ods.UpdateEntryParams{
					DatastoreRef: ref,
					ID:           flags.id,
					Value:        value,
				}

				if cmd.Flags().Changed("allow-missing") {
					params.AllowMissing = &allowMissing
				}

				return client.UpdateEntry(cmd.Context(), params)
			})
		},
	}

	flags.register(cmd, true)
	cmd.Flags().Int64Var(&value, "value", 0, "new entry value")
	cmd.Flags().BoolVar(&allowMissing, "allow-missing", false, "create the entry if it does not exist")
	_ = cmd.MarkFlagRequired("value")

	return cmd
}

func newOrderedDatastoreDeleteCommand() *cobra.Command {
	var flags entryFlags

	cmd := &cobra.Command{
		Use:   "delete",
		Short: "Delete an entry",
		Long:  "Delete an entry from an ordered data store",
		RunE: func(cmd *cobra.Command, args []string) error {
			err := flags.requireID()
			if err != nil {
				return err
			}

			ref, err := datastoreRef(cmd, &flags)
			if err != nil {
				return err
			}

			client, err := newODSClient(cmd)
			if err != nil {
				return err
			}

			err = client.OrderedDataStores().DeleteEntry(cmd.Context(), &ods.EntryParams{DatastoreRef: ref, ID: flags.id})
			if err != nil {
				return fmt.Errorf("failed to delete entry: %w", err)
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Deleted entry %q\n", flags.id)

			return nil
		},
	}

	flags.register(cmd, true)

	return cmd
}

func newOrderedDatastoreIncrementCommand() *cobra.Command {
	var (
		flags     entryFlags
		increment int64
	)

	cmd := &cobra.Command{
		Use:   "increment",
		Short: "Increment an entry",
		Long:  "Atomically add an amount to an entry's value; negative amounts decrement",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEntryCommand(cmd, &flags, func(client ods.OrderedDataStoresClient, ref ods.DatastoreRef) (*ods.Entry, error) {
				return client.IncrementEntry(cmd.Context(), &ods.IncrementEntryParams{
					DatastoreRef: ref,
					ID:           flags.id,
					Increment:    increment,
				})
			})
		},
	}

	flags.register(cmd, true)
	cmd.Flags().Int64Var(&increment, "increment", 0, "amount to add")
	_ = cmd.MarkFlagRequired("increment")

	return cmd
}

// runEntryCommand resolves configuration, runs op and renders the entry it
// returns.
func runEntryCommand(
	cmd *cobra.Command,
	flags *entryFlags,
	op func(client ods.OrderedDataStoresClient, ref ods.DatastoreRef) (*ods.Entry, error),
) error {
	format, err := outputFormat()
	if err != nil {
		return err
	}

	err = flags.requireID()
	if err != nil {
		return err
	}

	ref, err := datastoreRef(cmd, flags)
	if err != nil {
		return err
	}

	client, err := newODSClient(cmd)
	if err != nil {
		return err
	}

	entry, err := op(client.OrderedDataStores(), ref)
	if err != nil {
		return fmt.Errorf("failed to %s entry: %w", cmd.Name(), err)
	}

	return renderEntry(cmd.OutOrStdout(), format, entry)
}

func newOrderedDatastoreImportCommand() *cobra.Command {
	var (
		flags       entryFlags
		concurrency int
		increment   bool
	)

	cmd := &cobra.Command{
		Use:   "import FILE",
		Short: "Import entries from a file",
		Long: `Write every id/value pair of a YAML or JSON mapping file to the store.
Entries are upserted (update with allow_missing) unless --increment is given,
in which case each value is added to the existing entry.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			values, err := readEntryFile(args[0])
			if err != nil {
				return err
			}

			ref, err := datastoreRef(cmd, &flags)
			if err != nil {
				return err
			}

			client, err := newODSClient(cmd)
			if err != nil {
				return err
			}

			ids := make([]string, 0, len(values))
			for id := range values {
				ids = append(ids, id)
			}

			sort.Strings(ids)

			builder := ods.NewBatchBuilder(ref)
			for _, id := range ids {
				if increment {
					builder.AddIncrement(id, values[id])
				} else {
					builder.AddUpdate(id, values[id], ods.Ptr(true))
				}
			}

			results := ods.NewBatchExecutor(client.OrderedDataStores(), concurrency).Execute(cmd.Context(), builder.Build())

			return renderBatchResults(cmd, results)
		},
	}

	flags.register(cmd, false)
	cmd.Flags().IntVar(&concurrency, "concurrency", ods.DefaultBatchConcurrency, "number of concurrent requests")
	cmd.Flags().BoolVar(&increment, "increment", false, "add values to existing entries instead of replacing them")

	return cmd
}

// readEntryFile parses a mapping of entry id to integer value. JSON is
// accepted as a subset of YAML.
func readEntryFile(path string) (map[string]int64, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	values := map[string]int64{}

	err = yaml.Unmarshal(data, &values)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	return values, nil
}

func renderBatchResults(cmd *cobra.Command, results []ods.BatchResult) error {
	format, err := outputFormat()
	if err != nil {
		return err
	}

	type importResult struct {
		ID    string   `json:"id"              yaml:"id"`
		Value *float64 `json:"value,omitempty" yaml:"value,omitempty"`
		Error string   `json:"error,omitempty" yaml:"error,omitempty"`
	}

	rows := make([]importResult, 0, len(results))

	for _, result := range results {
		row := importResult{ID: result.ID}
		if result.Entry != nil {
			row.Value = &result.Entry.Value
		}

		if result.Error != nil {
			row.Error = result.Error.Error()
		}

		rows = append(rows, row)
	}

	done, err := renderStructured(cmd.OutOrStdout(), format, rows)
	if err != nil {
		return err
	}

	if !done {
		table := tablewriter.NewWriter(cmd.OutOrStdout())
		table.Header("ID", "Value", "Error")

		for _, row := range rows {
			value := ""
			if row.Value != nil {
				value = formatValue(*row.Value)
			}

			_ = table.Append(row.ID, value, row.Error)
		}

		err = table.Render()
		if err != nil {
			return fmt.Errorf("failed to render table: %w", err)
		}
	}

	failed := ods.FailedResults(results)
	if len(failed) > 0 {
		return fmt.Errorf("%w: %d of %d entries failed to import", ErrImportFailed, len(failed), len(results))
	}

	return nil
}
