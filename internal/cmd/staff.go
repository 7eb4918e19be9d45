package cmd

import (
	"github.com/spf13/cobra"

	"github.com/tillpoint/posadmin/internal/backend"
	"github.com/tillpoint/posadmin/internal/output"
)

var staffCmd = &cobra.Command{
	Use:   "staff",
	Short: "Manage managers and cashiers",
}

var staffListCmd = &cobra.Command{
	Use:       "list <manager|cashier>",
	Short:     "List managers or cashiers",
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"manager", "cashier"},
	RunE: func(cmd *cobra.Command, args []string) error {
		kind, err := backend.ParseStaffKind(args[0])
		if err != nil {
			return err
		}

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
		members, err := client.ListStaff(cmd.Context(), kind)
		if err != nil {
			return err
		}
		return renderTo(cmd, output.StaffGrid(kind, members), format, query)
	},
}

var staffCreateCmd = &cobra.Command{
	Use:       "create <manager|cashier>",
	Short:     "Create a manager or cashier",
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"manager", "cashier"},
	RunE: func(cmd *cobra.Command, args []string) error {
		kind, err := backend.ParseStaffKind(args[0])
		if err != nil {
			return err
		}

		var input backend.StaffInput
		for flag, dst := range map[string]*string{
			"name":      &input.Name,
			"last-name": &input.LastName,
			"username":  &input.Username,
			"passcode":  &input.Passcode,
		} {
			if *dst, err = cmd.Flags().GetString(flag); err != nil {
				return err
			}
		}
		if err := input.Validate(); err != nil {
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
		member, err := client.CreateStaff(cmd.Context(), kind, input)
		if err != nil {
			return err
		}
		return renderTo(cmd, output.StaffGrid(kind, []backend.StaffMember{*member}), format, output.Query{})
	},
}

func init() {
	rootCmd.AddCommand(staffCmd)
	staffCmd.AddCommand(staffListCmd, staffCreateCmd)

	addListFlags(staffListCmd)
	addOutputFlags(staffCreateCmd)

	staffCreateCmd.Flags().String("name", "", "first name")
	staffCreateCmd.Flags().String("last-name", "", "last name")
	staffCreateCmd.Flags().String("username", "", "login name")
	staffCreateCmd.Flags().String("passcode", "", "numeric passcode")
}
