package commands

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/fivetwenty-io/ods-client/internal/constants"
)

// NewLoginCommand creates the login command.
func NewLoginCommand() *cobra.Command {
	var universeID string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Store an Open Cloud API key",
		Long:  "Prompt for an Open Cloud API key and save it, with an optional default universe, to the configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			apiKey, err := readAPIKey(cmd.InOrStdin(), cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			config := loadConfig()

			err = setConfigValue(config, KeyAPIKey, apiKey)
			if err != nil {
				return err
			}

			if universeID != "" {
				err = setConfigValue(config, KeyUniverseID, universeID)
				if err != nil {
					return err
				}
			}

			err = saveConfigStruct(config)
			if err != nil {
				return err
			}

			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "API key saved")

			return nil
		},
	}

	cmd.Flags().StringVar(&universeID, "universe", "", "default universe id to save alongside the key")

	return cmd
}

// readAPIKey prompts without echo when stdin is a terminal and reads a
// plain line otherwise.
func readAPIKey(in io.Reader, prompt io.Writer) (string, error) {
	_, _ = fmt.Fprint(prompt, "API key: ")

	if file, ok := in.(*os.File); ok && file.Fd() == uintptr(syscall.Stdin) && term.IsTerminal(int(file.Fd())) {
		secret, err := term.ReadPassword(int(syscall.Stdin))

		_, _ = fmt.Fprintln(prompt)

		if err != nil {
			return "", fmt.Errorf("reading API key: %w", err)
		}

		return validAPIKey(string(secret))
	}

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("reading API key: %w", err)
	}

	return validAPIKey(line)
}

func validAPIKey(raw string) (string, error) {
	key := strings.TrimSpace(raw)
	if key == "" {
		return "", constants.ErrEmptyAPIKey
	}

	return key, nil
}
