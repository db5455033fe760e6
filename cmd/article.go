package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/lexhist/lexhist/internal/config"
	"github.com/lexhist/lexhist/internal/model"
	"github.com/lexhist/lexhist/internal/service"
	"github.com/lexhist/lexhist/internal/store"
	"github.com/olekukonko/tablewriter"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var articleCmd = &cobra.Command{
	Use:   "article",
	Short: "article version commands",
}

func init() {
	rootCmd.AddCommand(articleCmd)
	articleCmd.SetHelpCommand(&cobra.Command{Use: "no-help", Hidden: true})
	articleCmd.AddCommand(appendArticleCmd())
	articleCmd.AddCommand(importBaselineCmd())
	articleCmd.AddCommand(currentArticleCmd())
	articleCmd.AddCommand(asOfArticleCmd())
	articleCmd.AddCommand(chainArticleCmd())
	articleCmd.AddCommand(listArticlesCmd())
}

func newVersionService() *service.VersionService {
	cnf := config.LoadConfig()
	return service.NewVersionService(
		config.GetCompress(cnf),
		store.NewGormStore(config.GetDb(cnf)),
		config.GetCache(cnf),
	)
}

func appendArticleCmd() *cobra.Command {
	var codeID string
	var article string
	var date string
	var text string
	var title string
	var amendmentRef string
	var repealed bool

	var required = []string{"code-id", "article", "date"}

	command := &cobra.Command{
		Use:     "append",
		Short:   "append a new version of an article",
		Example: "lexhist article append -c <code-id> -a 80 -d 2020-01-01 -t <text> -r <amendment-ref>",
		Run: func(cmd *cobra.Command, args []string) {
			if checkMissingFlags(cmd, required) {
				return
			}

			effective, err := service.ParseDate(date)
			if err != nil {
				logrus.Error(err)
				return
			}

			input := service.AppendVersionInput{
				CodeID:        codeID,
				Article:       article,
				EffectiveDate: effective,
				Text:          text,
				Title:         title,
				Repealed:      repealed,
			}
			if amendmentRef != "" {
				input.AmendmentRef = &amendmentRef
			}

			version, err := newVersionService().Append(context.Background(), input)
			if err != nil {
				logrus.Error(err)
				return
			}

			logrus.Infof("appended version %s of article %s (current: %v)", version.ID, article, version.IsCurrent)
		},
	}

	command.Flags().StringVarP(&codeID, "code-id", "c", "", "code id (required)")
	command.Flags().StringVarP(&article, "article", "a", "", "article number (required)")
	command.Flags().StringVarP(&date, "date", "d", "", "effective date (required)")
	command.Flags().StringVarP(&text, "text", "t", "", "article text")
	command.Flags().StringVarP(&title, "title", "T", "", "article title")
	command.Flags().StringVarP(&amendmentRef, "amendment-ref", "r", "", "amendment reference")
	command.Flags().BoolVarP(&repealed, "repealed", "R", false, "record a repeal instead of new text")

	command.Flags().SortFlags = false

	return command
}

func importBaselineCmd() *cobra.Command {
	var codeID string
	var file string

	var required = []string{"code-id", "file"}

	command := &cobra.Command{
		Use:     "baseline",
		Short:   "import the original enactment of a code from a JSON file",
		Example: "lexhist article baseline -c <code-id> -f articles.json",
		Run: func(cmd *cobra.Command, args []string) {
			if checkMissingFlags(cmd, required) {
				return
			}

			data, err := os.ReadFile(file)
			if err != nil {
				logrus.Error(err)
				return
			}

			var articles []service.BaselineArticle
			if err := json.Unmarshal(data, &articles); err != nil {
				logrus.Error(err)
				return
			}

			if err := newVersionService().ImportBaseline(context.Background(), codeID, articles); err != nil {
				logrus.Error(err)
				return
			}
		},
	}

	command.Flags().StringVarP(&codeID, "code-id", "c", "", "code id (required)")
	command.Flags().StringVarP(&file, "file", "f", "", "JSON file of articles (required)")

	command.Flags().SortFlags = false

	return command
}

func currentArticleCmd() *cobra.Command {
	var codeID string
	var article string

	var required = []string{"code-id", "article"}

	command := &cobra.Command{
		Use:     "current",
		Short:   "get the current version of an article",
		Example: "lexhist article current -c <code-id> -a 80",
		Run: func(cmd *cobra.Command, args []string) {
			if checkMissingFlags(cmd, required) {
				return
			}

			version, err := newVersionService().GetCurrent(context.Background(), codeID, article)
			if err != nil {
				logrus.Error(err)
				return
			}

			renderVersion(version)
		},
	}

	command.Flags().StringVarP(&codeID, "code-id", "c", "", "code id (required)")
	command.Flags().StringVarP(&article, "article", "a", "", "article number (required)")

	command.Flags().SortFlags = false

	return command
}

func asOfArticleCmd() *cobra.Command {
	var codeID string
	var article string
	var date string

	var required = []string{"code-id", "article", "date"}

	command := &cobra.Command{
		Use:     "asof",
		Short:   "get the version of an article in force on a date",
		Example: "lexhist article asof -c <code-id> -a 80 -d 2021-06-01",
		Run: func(cmd *cobra.Command, args []string) {
			if checkMissingFlags(cmd, required) {
				return
			}

			version, err := newVersionService().GetAsOf(context.Background(), codeID, article, date)
			if err != nil {
				logrus.Error(err)
				return
			}

			renderVersion(version)
		},
	}

	command.Flags().StringVarP(&codeID, "code-id", "c", "", "code id (required)")
	command.Flags().StringVarP(&article, "article", "a", "", "article number (required)")
	command.Flags().StringVarP(&date, "date", "d", "", "as-of date (required)")

	command.Flags().SortFlags = false

	return command
}

func chainArticleCmd() *cobra.Command {
	var codeID string
	var article string

	var required = []string{"code-id", "article"}

	command := &cobra.Command{
		Use:     "chain",
		Short:   "show the full amendment chain of an article",
		Example: "lexhist article chain -c <code-id> -a 80",
		Run: func(cmd *cobra.Command, args []string) {
			if checkMissingFlags(cmd, required) {
				return
			}

			cnf := config.LoadConfig()
			resolver := service.NewResolverService(store.NewGormStore(config.GetDb(cnf)))
			entries, err := resolver.AmendmentChain(context.Background(), codeID, article)
			if err != nil {
				logrus.Error(err)
				return
			}

			table := tablewriter.NewWriter(os.Stdout)
			table.SetHeader([]string{"Effective", "Current", "Repealed", "Amendment", "Hash"})
			for _, entry := range entries {
				ref := ""
				if entry.Version.AmendmentRef != nil {
					ref = *entry.Version.AmendmentRef
				}
				table.Append([]string{
					entry.Version.EffectiveDate.Format(service.DateLayout),
					fmt.Sprintf("%v", entry.IsCurrent),
					fmt.Sprintf("%v", entry.IsRepealed),
					ref,
					shortHash(entry.Version.ContentHash),
				})
			}
			table.Render()
		},
	}

	command.Flags().StringVarP(&codeID, "code-id", "c", "", "code id (required)")
	command.Flags().StringVarP(&article, "article", "a", "", "article number (required)")

	command.Flags().SortFlags = false

	return command
}

func listArticlesCmd() *cobra.Command {
	var codeID string
	var currentOnly bool
	var repealed bool
	var limit int
	var offset int

	var required = []string{"code-id"}

	command := &cobra.Command{
		Use:     "list",
		Short:   "list article versions of a code in article order",
		Example: "lexhist article list -c <code-id> --current -l 50",
		Run: func(cmd *cobra.Command, args []string) {
			if checkMissingFlags(cmd, required) {
				return
			}

			filter := store.VersionFilter{}
			if currentOnly {
				t := true
				filter.IsCurrent = &t
			}
			if cmd.Flag("repealed").Changed {
				filter.IsRepealed = &repealed
			}

			versions, total, err := newVersionService().List(context.Background(), codeID, filter, limit, offset)
			if err != nil {
				logrus.Error(err)
				return
			}

			table := tablewriter.NewWriter(os.Stdout)
			table.SetHeader([]string{"Article", "Effective", "Title", "Current", "Repealed"})
			for _, version := range versions {
				table.Append([]string{
					version.Article,
					version.EffectiveDate.Format(service.DateLayout),
					version.Title,
					fmt.Sprintf("%v", version.IsCurrent),
					fmt.Sprintf("%v", version.IsRepealed),
				})
			}
			table.Render()

			logrus.Infof("%d of %d rows", len(versions), total)
		},
	}

	command.Flags().StringVarP(&codeID, "code-id", "c", "", "code id (required)")
	command.Flags().BoolVar(&currentOnly, "current", false, "only current versions")
	command.Flags().BoolVar(&repealed, "repealed", false, "filter by repealed flag")
	command.Flags().IntVarP(&limit, "limit", "l", 0, "page size, 0 for all")
	command.Flags().IntVarP(&offset, "offset", "o", 0, "page offset")

	command.Flags().SortFlags = false

	return command
}

// shortHash abbreviates a content hash for table output. Tolerates rows
// without one.
func shortHash(hash string) string {
	return fmt.Sprintf("%.12s", hash)
}

func renderVersion(version *model.ArticleVersion) {
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Article", "Effective", "Title", "Current", "Repealed"})
	table.Append([]string{
		version.Article,
		version.EffectiveDate.Format(service.DateLayout),
		version.Title,
		fmt.Sprintf("%v", version.IsCurrent),
		fmt.Sprintf("%v", version.IsRepealed),
	})
	table.Render()

	if version.Text != "" {
		fmt.Println(version.Text)
	}
}
