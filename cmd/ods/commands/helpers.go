package commands

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/fivetwenty-io/ods-client/internal/constants"
	"github.com/fivetwenty-io/ods-client/pkg/ods"
	"github.com/fivetwenty-io/ods-client/pkg/odsclient"
)

// Configuration keys shared by flags, environment and the config file.
const (
	KeyAPIKey     = "api_key"
	KeyUniverseID = "universe_id"
	KeyBaseURL    = "base_url"
	KeyOutput     = "output"
	KeyVerbose    = "verbose"
	KeyRetries    = "retries"
)

// Common static errors used throughout the commands package.
var (
	ErrInvalidValue = errors.New("invalid value")
	ErrImportFailed = errors.New("import incomplete")
)

// outputFormat returns the configured output format, rejecting unknown ones.
func outputFormat() (string, error) {
	format := viper.GetString(KeyOutput)
	if format == "" {
		return constants.FormatTable, nil
	}

	switch format {
	case constants.FormatTable, constants.FormatJSON, constants.FormatYAML:
		return format, nil
	default:
		return "", fmt.Errorf("%w: %q", constants.ErrInvalidOutputFormat, format)
	}
}

// newODSClient builds a client from the resolved configuration.
func newODSClient(cmd *cobra.Command) (ods.Client, error) {
	config := &ods.Config{
		BaseURL:  viper.GetString(KeyBaseURL),
		RetryMax: viper.GetInt(KeyRetries),
	}

	if viper.GetBool(KeyVerbose) {
		config.Logger = ods.NewSlogLogger(slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{
			Level: slog.LevelDebug,
		})))
		config.Debug = true
	}

	client, err := odsclient.New(cmd.Context(), config)
	if err != nil {
		return nil, fmt.Errorf("creating client: %w", err)
	}

	return client, nil
}

// datastoreRef resolves the credential, universe, store and scope an entry
// command targets. The scope is only sent when --scope was given.
func datastoreRef(cmd *cobra.Command, flags *entryFlags) (ods.DatastoreRef, error) {
	apiKey := viper.GetString(KeyAPIKey)
	if apiKey == "" {
		return ods.DatastoreRef{}, constants.ErrNoAPIKey
	}

	universeID, err := universeIDFromConfig()
	if err != nil {
		return ods.DatastoreRef{}, err
	}

	if flags.datastoreName == "" {
		return ods.DatastoreRef{}, constants.ErrDatastoreNameMissing
	}

	ref := ods.DatastoreRef{
		APIKey:        apiKey,
		UniverseID:    universeID,
		DatastoreName: flags.datastoreName,
	}

	if cmd.Flags().Changed("scope") {
		if flags.scope == "" {
			return ods.DatastoreRef{}, fmt.Errorf("%w: scope must not be empty", ErrInvalidValue)
		}

		scope := flags.scope
		ref.Scope = &scope
	}

	return ref, nil
}

func universeIDFromConfig() (ods.UniverseID, error) {
	raw := viper.GetString(KeyUniverseID)
	if raw == "" {
		return 0, constants.ErrNoUniverseID
	}

	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("%w: universe id %q", ErrInvalidValue, raw)
	}

	return ods.UniverseID(id), nil
}

// renderStructured writes v as JSON or YAML. It reports false for table output.
func renderStructured(w io.Writer, format string, v interface{}) (bool, error) {
	switch format {
	case constants.FormatJSON:
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", strings.Repeat(" ", constants.JSONIndentSize))

		return true, encoder.Encode(v)
	case constants.FormatYAML:
		encoder := yaml.NewEncoder(w)

		return true, encoder.Encode(v)
	default:
		return false, nil
	}
}

func formatValue(value float64) string {
	return strconv.FormatFloat(value, 'f', -1, 64)
}

func renderEntries(w io.Writer, format string, entries []ods.Entry, nextPageToken ods.PageToken) error {
	done, err := renderStructured(w, format, ods.ListEntriesResponse{Entries: entries, NextPageToken: nextPageToken})
	if done || err != nil {
		return err
	}

	if len(entries) == 0 {
		_, _ = fmt.Fprintln(w, "No entries found")
	} else {
		table := tablewriter.NewWriter(w)
		table.Header("ID", "Value", "Path")

		for _, entry := range entries {
			_ = table.Append(entry.ID, formatValue(entry.Value), entry.Path)
		}

		err = table.Render()
		if err != nil {
			return fmt.Errorf("failed to render table: %w", err)
		}
	}

	if !nextPageToken.IsZero() {
		_, _ = fmt.Fprintf(w, "\nNext page token: %s\n", nextPageToken)
	}

	return nil
}

func renderEntry(w io.Writer, format string, entry *ods.Entry) error {
	done, err := renderStructured(w, format, entry)
	if done || err != nil {
		return err
	}

	table := tablewriter.NewWriter(w)
	table.Header("Property", "Value")
	_ = table.Append("ID", entry.ID)
	_ = table.Append("Value", formatValue(entry.Value))
	_ = table.Append("Path", entry.Path)

	err = table.Render()
	if err != nil {
		return fmt.Errorf("failed to render table: %w", err)
	}

	return nil
}
