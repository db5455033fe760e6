package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "lexhist",
	Short: "historical legal code store",
	Example: `lexhist code register -c <code-id> -n <name> -d <source-date>
lexhist article current -c <code-id> -a <article>
lexhist article asof -c <code-id> -a <article> -d 2021-06-01
lexhist article chain -c <code-id> -a <article>
lexhist amendment pending -r <amendment-ref> -c <code-id> -d <date>
lexhist amendment history -c <code-id>`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(dbCmd)
	rootCmd.SetHelpCommand(&cobra.Command{Use: "no-help", Hidden: true})

	rootCmd.CompletionOptions.HiddenDefaultCmd = true
	cobra.EnableCommandSorting = false
}
