package main

import (
	"bufio"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Tuning-Luna/hairdressing-member-manger-system/internal/auth"
	"github.com/Tuning-Luna/hairdressing-member-manger-system/internal/fileio"
	"github.com/Tuning-Luna/hairdressing-member-manger-system/internal/ledger"
)

func migrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the ledger tables if they do not exist",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context(), nil)
			if err != nil {
				return err
			}
			defer a.Close()
			a.log.Info("schema ready")
			return nil
		},
	}
}

func importCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "import FILE",
		Short: "Merge members from a CSV file (name,phone,type,balance)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context(), nil)
			if err != nil {
				return err
			}
			defer a.Close()

			result, err := a.svc.ImportFile(cmd.Context(), fileio.PromptPicker{Path: args[0]})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported: %d success, %d failed, %d duplicated\n",
				result.Success, result.Failed, result.Duplicated)
			return nil
		},
	}
}

func exportCommand() *cobra.Command {
	var (
		output string
		force  bool
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write every member to a CSV file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context(), nil)
			if err != nil {
				return err
			}
			defer a.Close()

			written, err := a.svc.ExportFile(cmd.Context(), fileio.PromptPicker{
				Path:  output,
				Force: force,
				In:    cmd.InOrStdin(),
				Out:   cmd.OutOrStdout(),
			})
			if err != nil {
				return err
			}
			if !written {
				fmt.Fprintln(cmd.OutOrStdout(), "export cancelled")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), "export written")
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", ledger.DefaultExportName, "destination file")
	cmd.Flags().BoolVarP(&force, "force", "f", false, "overwrite without asking")
	return cmd
}

func consumeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "consume ID",
		Short: "Charge one visit to a member",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil || id <= 0 {
				return fmt.Errorf("invalid member id %q", args[0])
			}
			a, err := openApp(cmd.Context(), nil)
			if err != nil {
				return err
			}
			defer a.Close()

			rec, err := a.svc.Consume(cmd.Context(), id)
			if err != nil {
				return err
			}
			member, err := a.svc.Get(cmd.Context(), id)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "charged %s %.2f, balance %.2f\n", member.Name, rec.Amount, member.Balance)
			return nil
		},
	}
}

func hashPasswordCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "hash-password",
		Short: "Read a password from stdin and print its bcrypt hash for OPERATOR_PASSWORD_HASH",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
			if err != nil && line == "" {
				return fmt.Errorf("read password: %w", err)
			}
			password := strings.TrimRight(line, "\r\n")
			if password == "" {
				return errors.New("password must not be empty")
			}
			hash, err := auth.HashPassword(password)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), hash)
			return nil
		},
	}
}
