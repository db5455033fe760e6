package cmd

import (
	"context"
	"os"
	"strconv"

	"github.com/lexhist/lexhist/internal/model"
	"github.com/lexhist/lexhist/internal/service"
	"github.com/olekukonko/tablewriter"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var codeCmd = &cobra.Command{
	Use:   "code",
	Short: "code registry commands",
}

func init() {
	rootCmd.AddCommand(codeCmd)
	codeCmd.SetHelpCommand(&cobra.Command{Use: "no-help", Hidden: true})
	codeCmd.AddCommand(registerCodeCmd())
	codeCmd.AddCommand(getCodeCmd())
	codeCmd.AddCommand(listCodesCmd())
	codeCmd.AddCommand(setCodeStatusCmd())
}

func registerCodeCmd() *cobra.Command {
	var codeID string
	var name string
	var shortName string
	var description string
	var sourceRef string
	var sourceDate string

	var required = []string{"code-id", "name", "source-date"}

	command := &cobra.Command{
		Use:     "register",
		Short:   "register a new code",
		Example: "lexhist code register -c civil-code -n \"Civil Code\" -d 2001-11-30",
		Run: func(cmd *cobra.Command, args []string) {
			if checkMissingFlags(cmd, required) {
				return
			}

			date, err := service.ParseDate(sourceDate)
			if err != nil {
				logrus.Error(err)
				return
			}

			registry := service.NewRegistryService(newStore())
			code, err := registry.Register(context.Background(), codeID, service.RegisterCodeInput{
				Name:        name,
				ShortName:   shortName,
				Description: description,
				SourceRef:   sourceRef,
				SourceDate:  date,
			})
			if err != nil {
				logrus.Error(err)
				return
			}

			logrus.Infof("code registered with id: %s", code.ID)
		},
	}

	command.Flags().StringVarP(&codeID, "code-id", "c", "", "code id (required)")
	command.Flags().StringVarP(&name, "name", "n", "", "display name (required)")
	command.Flags().StringVarP(&shortName, "short-name", "s", "", "short name")
	command.Flags().StringVarP(&description, "description", "m", "", "description")
	command.Flags().StringVarP(&sourceRef, "source-ref", "r", "", "source document reference")
	command.Flags().StringVarP(&sourceDate, "source-date", "d", "", "source document date (required)")

	command.Flags().SortFlags = false

	return command
}

func getCodeCmd() *cobra.Command {
	var codeID string

	var required = []string{"code-id"}

	command := &cobra.Command{
		Use:     "get",
		Short:   "get a code",
		Example: "lexhist code get -c <code-id>",
		Run: func(cmd *cobra.Command, args []string) {
			if checkMissingFlags(cmd, required) {
				return
			}

			registry := service.NewRegistryService(newStore())
			code, err := registry.Get(context.Background(), codeID)
			if err != nil {
				logrus.Error(err)
				return
			}

			renderCodes([]*model.Code{code})
		},
	}

	command.Flags().StringVarP(&codeID, "code-id", "c", "", "code id (required)")

	return command
}

func listCodesCmd() *cobra.Command {
	command := &cobra.Command{
		Use:     "list",
		Short:   "list registered codes",
		Example: "lexhist code list",
		Run: func(cmd *cobra.Command, args []string) {
			registry := service.NewRegistryService(newStore())
			codes, err := registry.List(context.Background())
			if err != nil {
				logrus.Error(err)
				return
			}

			renderCodes(codes)
		},
	}

	return command
}

func setCodeStatusCmd() *cobra.Command {
	var codeID string
	var status string

	var required = []string{"code-id", "status"}

	command := &cobra.Command{
		Use:     "status",
		Short:   "set the consolidation status of a code",
		Example: "lexhist code status -c <code-id> -s in_progress",
		Run: func(cmd *cobra.Command, args []string) {
			if checkMissingFlags(cmd, required) {
				return
			}

			registry := service.NewRegistryService(newStore())
			err := registry.SetConsolidationStatus(context.Background(), codeID, model.ConsolidationStatus(status))
			if err != nil {
				logrus.Error(err)
				return
			}

			logrus.Infof("code %s is now %s", codeID, status)
		},
	}

	command.Flags().StringVarP(&codeID, "code-id", "c", "", "code id (required)")
	command.Flags().StringVarP(&status, "status", "s", "", "not_started, in_progress or complete (required)")

	command.Flags().SortFlags = false

	return command
}

func renderCodes(codes []*model.Code) {
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"ID", "Name", "Status", "Amendments", "Last Amended"})
	for _, code := range codes {
		lastAmended := ""
		if code.LastAmendedAt != nil {
			lastAmended = code.LastAmendedAt.Format(service.DateLayout)
		}
		table.Append([]string{
			code.ID,
			code.Name,
			string(code.Status),
			strconv.FormatInt(code.AmendmentCount, 10),
			lastAmended,
		})
	}
	table.Render()
}
