package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/tillpoint/posadmin/internal/backend"
	"github.com/tillpoint/posadmin/internal/output"
)

var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "Manage back-office user accounts",
}

var usersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List users",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := currentConfig()
		format, err := resolveOutputFormat(cmd, cfg)
		if err != nil {
			return err
		}
		query, err := resolveQuery(cmd, cfg)
		if err != nil {
			return err
		}

		client, err := newBackendClient(cfg)
		if err != nil {
			return err
		}
		users, err := client.ListUsers(cmd.Context())
		if err != nil {
			return err
		}
		return renderTo(cmd, output.UsersGrid(users), format, query)
	},
}

var usersGetCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Show one user",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}

		cfg := currentConfig()
		format, err := resolveOutputFormat(cmd, cfg)
		if err != nil {
			return err
		}
		client, err := newBackendClient(cfg)
		if err != nil {
			return err
		}
		user, err := client.GetUser(cmd.Context(), id)
		if err != nil {
			return err
		}
		return renderTo(cmd, output.UsersGrid([]backend.User{*user}), format, output.Query{})
	},
}

var usersAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Create a user",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		input, err := userInputFromFlags(cmd)
		if err != nil {
			return err
		}

		cfg := currentConfig()
		format, err := resolveOutputFormat(cmd, cfg)
		if err != nil {
			return err
		}
		client, err := newBackendClient(cfg)
		if err != nil {
			return err
		}
		user, err := client.AddUser(cmd.Context(), input)
		if err != nil {
			return err
		}
		return renderTo(cmd, output.UsersGrid([]backend.User{*user}), format, output.Query{})
	},
}

var usersUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Replace a user's details",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		input, err := userInputFromFlags(cmd)
		if err != nil {
			return err
		}

		client, err := newBackendClient(currentConfig())
		if err != nil {
			return err
		}
		if err := client.UpdateUser(cmd.Context(), id, input); err != nil {
			return err
		}
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "User %d updated.\n", id)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(usersCmd)
	usersCmd.AddCommand(usersListCmd, usersGetCmd, usersAddCmd, usersUpdateCmd)

	addListFlags(usersListCmd)
	addOutputFlags(usersGetCmd)
	addOutputFlags(usersAddCmd)

	for _, c := range []*cobra.Command{usersAddCmd, usersUpdateCmd} {
		c.Flags().String("full-name", "", "full name")
		c.Flags().String("email", "", "email address")
		c.Flags().String("username", "", "login name")
		c.Flags().String("password", "", "password")
		c.Flags().String("title", "", "job title")
		c.Flags().String("level", "", "access level")
	}
}

func userInputFromFlags(cmd *cobra.Command) (backend.UserInput, error) {
	var input backend.UserInput
	fields := []struct {
		flag string
		dst  *string
	}{
		{"full-name", &input.FullName},
		{"email", &input.EmailAddress},
		{"username", &input.Username},
		{"password", &input.Password},
		{"title", &input.UserTitle},
		{"level", &input.UserLevel},
	}
	for _, f := range fields {
		value, err := cmd.Flags().GetString(f.flag)
		if err != nil {
			return backend.UserInput{}, err
		}
		*f.dst = value
	}
	return input, input.Validate()
}

func parseID(value string) (int64, error) {
	id, err := strconv.ParseInt(value, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q: must be a positive integer", value)
	}
	return id, nil
}
