package cmd

import (
	"context"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/lexhist/lexhist/internal/model"
	"github.com/lexhist/lexhist/internal/service"
	"github.com/olekukonko/tablewriter"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var amendmentCmd = &cobra.Command{
	Use:   "amendment",
	Short: "amendment ledger commands",
}

func init() {
	rootCmd.AddCommand(amendmentCmd)
	amendmentCmd.SetHelpCommand(&cobra.Command{Use: "no-help", Hidden: true})
	amendmentCmd.AddCommand(recordPendingCmd())
	amendmentCmd.AddCommand(markAppliedCmd())
	amendmentCmd.AddCommand(markFailedCmd())
	amendmentCmd.AddCommand(markConflictCmd())
	amendmentCmd.AddCommand(retryAmendmentCmd())
	amendmentCmd.AddCommand(amendmentHistoryCmd())
}

// splitArticles turns a comma list flag into article numbers.
func splitArticles(value string) []string {
	if value == "" {
		return nil
	}

	parts := strings.Split(value, ",")
	articles := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			articles = append(articles, trimmed)
		}
	}
	return articles
}

func recordPendingCmd() *cobra.Command {
	var amendmentRef string
	var codeID string
	var kind string
	var date string
	var affected string
	var added string
	var modified string
	var repealed string

	var required = []string{"amendment-ref", "code-id", "kind", "date"}

	command := &cobra.Command{
		Use:     "pending",
		Short:   "record a discovered amendment as pending",
		Example: "lexhist amendment pending -r <ref> -c <code-id> -k modification -d 2020-01-01 -a 80,81",
		Run: func(cmd *cobra.Command, args []string) {
			if checkMissingFlags(cmd, required) {
				return
			}

			effective, err := service.ParseDate(date)
			if err != nil {
				logrus.Error(err)
				return
			}

			ledger := service.NewLedgerService(newStore())
			app, err := ledger.RecordPending(context.Background(), service.RecordPendingInput{
				AmendmentRef:  amendmentRef,
				CodeID:        codeID,
				Affected:      splitArticles(affected),
				Added:         splitArticles(added),
				Modified:      splitArticles(modified),
				Repealed:      splitArticles(repealed),
				Kind:          model.AmendmentKind(kind),
				EffectiveDate: effective,
			})
			if err != nil {
				logrus.Error(err)
				return
			}

			logrus.Infof("amendment %s recorded as pending for code %s", app.AmendmentRef, app.CodeID)
		},
	}

	command.Flags().StringVarP(&amendmentRef, "amendment-ref", "r", "", "amendment reference (required)")
	command.Flags().StringVarP(&codeID, "code-id", "c", "", "code id (required)")
	command.Flags().StringVarP(&kind, "kind", "k", "", "addition, modification, repeal or mixed (required)")
	command.Flags().StringVarP(&date, "date", "d", "", "effective date (required)")
	command.Flags().StringVarP(&affected, "affected", "a", "", "affected article numbers, comma separated")
	command.Flags().StringVar(&added, "added", "", "added article numbers, comma separated")
	command.Flags().StringVar(&modified, "modified", "", "modified article numbers, comma separated")
	command.Flags().StringVar(&repealed, "repealed", "", "repealed article numbers, comma separated")

	command.Flags().SortFlags = false

	return command
}

func markAppliedCmd() *cobra.Command {
	var amendmentRef string
	var codeID string

	var required = []string{"amendment-ref", "code-id"}

	command := &cobra.Command{
		Use:     "applied",
		Short:   "mark a pending amendment as applied",
		Example: "lexhist amendment applied -r <ref> -c <code-id>",
		Run: func(cmd *cobra.Command, args []string) {
			if checkMissingFlags(cmd, required) {
				return
			}

			ledger := service.NewLedgerService(newStore())
			if err := ledger.MarkApplied(context.Background(), amendmentRef, codeID, time.Now()); err != nil {
				logrus.Error(err)
				return
			}

			color.Green("amendment %s applied", amendmentRef)
		},
	}

	command.Flags().StringVarP(&amendmentRef, "amendment-ref", "r", "", "amendment reference (required)")
	command.Flags().StringVarP(&codeID, "code-id", "c", "", "code id (required)")

	command.Flags().SortFlags = false

	return command
}

func markFailedCmd() *cobra.Command {
	var amendmentRef string
	var codeID string
	var message string

	var required = []string{"amendment-ref", "code-id", "message"}

	command := &cobra.Command{
		Use:     "failed",
		Short:   "mark a pending amendment as failed",
		Example: "lexhist amendment failed -r <ref> -c <code-id> -m <error>",
		Run: func(cmd *cobra.Command, args []string) {
			if checkMissingFlags(cmd, required) {
				return
			}

			ledger := service.NewLedgerService(newStore())
			if err := ledger.MarkFailed(context.Background(), amendmentRef, codeID, message); err != nil {
				logrus.Error(err)
				return
			}

			color.Red("amendment %s failed", amendmentRef)
		},
	}

	command.Flags().StringVarP(&amendmentRef, "amendment-ref", "r", "", "amendment reference (required)")
	command.Flags().StringVarP(&codeID, "code-id", "c", "", "code id (required)")
	command.Flags().StringVarP(&message, "message", "m", "", "error message (required)")

	command.Flags().SortFlags = false

	return command
}

func markConflictCmd() *cobra.Command {
	var amendmentRef string
	var codeID string
	var details string

	var required = []string{"amendment-ref", "code-id", "details"}

	command := &cobra.Command{
		Use:     "conflict",
		Short:   "mark a pending amendment as conflicted",
		Example: "lexhist amendment conflict -r <ref> -c <code-id> -m <details>",
		Run: func(cmd *cobra.Command, args []string) {
			if checkMissingFlags(cmd, required) {
				return
			}

			ledger := service.NewLedgerService(newStore())
			if err := ledger.MarkConflict(context.Background(), amendmentRef, codeID, details); err != nil {
				logrus.Error(err)
				return
			}

			color.Yellow("amendment %s conflicted", amendmentRef)
		},
	}

	command.Flags().StringVarP(&amendmentRef, "amendment-ref", "r", "", "amendment reference (required)")
	command.Flags().StringVarP(&codeID, "code-id", "c", "", "code id (required)")
	command.Flags().StringVarP(&details, "details", "m", "", "conflict details (required)")

	command.Flags().SortFlags = false

	return command
}

func retryAmendmentCmd() *cobra.Command {
	var amendmentRef string
	var codeID string

	var required = []string{"amendment-ref", "code-id"}

	command := &cobra.Command{
		Use:     "retry",
		Short:   "reset a failed or conflicted amendment to pending",
		Example: "lexhist amendment retry -r <ref> -c <code-id>",
		Run: func(cmd *cobra.Command, args []string) {
			if checkMissingFlags(cmd, required) {
				return
			}

			ledger := service.NewLedgerService(newStore())
			if err := ledger.Retry(context.Background(), amendmentRef, codeID); err != nil {
				logrus.Error(err)
				return
			}

			logrus.Infof("amendment %s reset to pending", amendmentRef)
		},
	}

	command.Flags().StringVarP(&amendmentRef, "amendment-ref", "r", "", "amendment reference (required)")
	command.Flags().StringVarP(&codeID, "code-id", "c", "", "code id (required)")

	command.Flags().SortFlags = false

	return command
}

func amendmentHistoryCmd() *cobra.Command {
	var codeID string
	var status string

	var required = []string{"code-id"}

	command := &cobra.Command{
		Use:     "history",
		Short:   "show the amendment ledger of a code",
		Example: "lexhist amendment history -c <code-id> -s failed",
		Run: func(cmd *cobra.Command, args []string) {
			if checkMissingFlags(cmd, required) {
				return
			}

			var filter *model.ApplicationStatus
			if status != "" {
				s := model.ApplicationStatus(status)
				filter = &s
			}

			ledger := service.NewLedgerService(newStore())
			apps, err := ledger.History(context.Background(), codeID, filter)
			if err != nil {
				logrus.Error(err)
				return
			}

			table := tablewriter.NewWriter(os.Stdout)
			table.SetHeader([]string{"Ref", "Kind", "Effective", "Status", "Applied At", "Error"})
			for _, app := range apps {
				appliedAt := ""
				if app.AppliedAt != nil {
					appliedAt = app.AppliedAt.Format(time.RFC3339)
				}
				table.Append([]string{
					app.AmendmentRef,
					string(app.Kind),
					app.EffectiveDate.Format(service.DateLayout),
					string(app.Status),
					appliedAt,
					app.Error,
				})
			}
			table.Render()
		},
	}

	command.Flags().StringVarP(&codeID, "code-id", "c", "", "code id (required)")
	command.Flags().StringVarP(&status, "status", "s", "", "filter by status")

	command.Flags().SortFlags = false

	return command
}
