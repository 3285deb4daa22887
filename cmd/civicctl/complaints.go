package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/ivanoskov/civic_bot/internal/app"
	"github.com/ivanoskov/civic_bot/internal/repository"
	"github.com/ivanoskov/civic_bot/internal/service"
	"github.com/spf13/cobra"
)

func complaintsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "complaints",
		Short: "Inspect and update filed complaints",
	}
	cmd.AddCommand(complaintsListCmd())
	cmd.AddCommand(complaintsSetStatusCmd())
	return cmd
}

func openDesk(cmd *cobra.Command) (*service.CivicDesk, func(), error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, nil, err
	}
	repo, err := app.OpenRepository(cfg)
	if err != nil {
		return nil, nil, err
	}
	return service.NewCivicDesk(repo, nil), func() { repo.Close() }, nil
}

func complaintsListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List complaints, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			login, _ := cmd.Flags().GetString("login")
			limit, _ := cmd.Flags().GetInt("limit")

			desk, closeFn, err := openDesk(cmd)
			if err != nil {
				return err
			}
			defer closeFn()

			views, err := desk.Complaints(cmd.Context(), repository.ComplaintFilter{LoginID: login, Limit: limit})
			if err != nil {
				return err
			}
			if len(views) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No complaints")
				return nil
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "COMPLAINT\tLOGIN\tSTATUS\tISSUE\tNAME\tWARD\tCREATED")
			for _, v := range views {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
					v.ComplaintID, v.LoginID, v.Status, v.SubIssue, v.UserName, v.UserWard,
					v.CreatedAt.Format("2006-01-02 15:04"))
			}
			return tw.Flush()
		},
	}
	cmd.Flags().String("login", "", "Only complaints of this login id")
	cmd.Flags().IntP("limit", "n", 0, "Maximum rows (0 = all)")
	return cmd
}

func complaintsSetStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set-status <complaint_id> <status>",
		Short: "Change a complaint status (completed, in_progress, pending)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			desk, closeFn, err := openDesk(cmd)
			if err != nil {
				return err
			}
			defer closeFn()

			updated, err := desk.SetComplaintStatus(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s is now %s\n", updated.ComplaintID, updated.Status)
			return nil
		},
	}
}
