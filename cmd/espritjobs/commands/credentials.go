package commands

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"espritjobs/internal/config"

	"github.com/spf13/cobra"
)

var credentialsCmd = &cobra.Command{
	Use:   "credentials",
	Short: "Manages the password stored in the OS keyring.",
}

var credentialsEmail string

func init() {
	credentialsCmd.PersistentFlags().StringVar(&credentialsEmail, "email", "", "The account email, defaults to the configured one.")
	credentialsCmd.AddCommand(credentialsSetCmd)
	credentialsCmd.AddCommand(credentialsDeleteCmd)
	rootCmd.AddCommand(credentialsCmd)
}

func credentialsAccount() (string, error) {
	if credentialsEmail != "" {
		return credentialsEmail, nil
	}
	cfg, err := loadConfig()
	if err != nil {
		return "", err
	}
	if cfg.Credentials.Email == "" {
		return "", errors.New("no email configured, pass --email")
	}
	return cfg.Credentials.Email, nil
}

var credentialsSetCmd = &cobra.Command{
	Use:   "set [--email <address>]",
	Short: "Reads a password from stdin and stores it in the OS keyring.",
	RunE: func(cmd *cobra.Command, args []string) error {
		email, err := credentialsAccount()
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.ErrOrStderr(), "Password for %s: ", email)
		line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
		if err != nil && line == "" {
			return fmt.Errorf("read password: %w", err)
		}
		err = config.StorePassword(email, strings.TrimRight(line, "\r\n"))
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Stored password for %s\n", email)
		return nil
	},
}

var credentialsDeleteCmd = &cobra.Command{
	Use:   "delete [--email <address>]",
	Short: "Removes the stored password from the OS keyring.",
	RunE: func(cmd *cobra.Command, args []string) error {
		email, err := credentialsAccount()
		if err != nil {
			return err
		}
		err = config.DeletePassword(email)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Removed password for %s\n", email)
		return nil
	},
}
