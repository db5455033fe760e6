package cmd

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/lexhist/lexhist/internal/config"
	"github.com/lexhist/lexhist/internal/model"
	"github.com/lexhist/lexhist/internal/store"
	"github.com/spf13/cobra"
)

var dbCmd = &cobra.Command{
	Use:   "db",
	Short: "db commands",
}

func init() {
	dbCmd.AddCommand(Migrate())
}

func Migrate() *cobra.Command {
	command := &cobra.Command{
		Use:   "migrate",
		Short: "Migrate the database",
		Run: func(cmd *cobra.Command, args []string) {
			db := config.GetDb(config.LoadConfig())
			err := model.Migrate(db)
			if err != nil {
				panic(err)
			}
		},
	}

	return command
}

// newStore opens the configured database and wraps it in the gorm store.
func newStore() store.Store {
	db := config.GetDb(config.LoadConfig())
	return store.NewGormStore(db)
}

func checkMissingFlags(cmd *cobra.Command, flags []string) bool {
	var missingFlags []string
	for _, required := range flags {
		if !cmd.Flag(required).Changed {
			missingFlags = append(missingFlags, required)
		}
	}

	if len(missingFlags) > 0 {
		var msg string
		for _, f := range missingFlags {
			msg += fmt.Sprintf("--%s ", f)
		}
		color.Red("missing: %s", msg)
		return true
	}

	return false
}
