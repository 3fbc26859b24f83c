package main

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"mga-chatbot/internal/auth"
)

var (
	passwdUsername string
	passwdTeam     string
	passwdPassword string
)

var hashPasswordCmd = &cobra.Command{
	Use:   "hash-password",
	Short: "Print a credentials file entry for a new user",
	Long: `Hashes a password with bcrypt and prints a users.yaml entry.
The password is read from --password or, if omitted, from the first line of stdin.`,
	Args:        cobra.NoArgs,
	Annotations: map[string]string{skipConfigAnnotation: "true"},
	RunE:        runHashPassword,
}

func init() {
	hashPasswordCmd.Flags().StringVarP(&passwdUsername, "username", "u", "", "login name (required)")
	hashPasswordCmd.Flags().StringVarP(&passwdTeam, "team", "t", "", "team the user belongs to (required)")
	hashPasswordCmd.Flags().StringVarP(&passwdPassword, "password", "p", "", "password to hash")
	_ = hashPasswordCmd.MarkFlagRequired("username")
	_ = hashPasswordCmd.MarkFlagRequired("team")
	rootCmd.AddCommand(hashPasswordCmd)
}

func runHashPassword(cmd *cobra.Command, _ []string) error {
	password := passwdPassword
	if password == "" {
		line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
		if err != nil && line == "" {
			return errors.New("no password given on --password or stdin")
		}
		password = strings.TrimRight(line, "\r\n")
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}

	out, err := auth.MarshalUsers([]auth.User{{
		Username:     passwdUsername,
		PasswordHash: hash,
		Team:         passwdTeam,
	}})
	if err != nil {
		return fmt.Errorf("failed to render entry: %w", err)
	}
	cmd.Print(string(out))
	return nil
}
