package cmd

import (
	"fmt"
	"os"
	"os/signal"

	"github.com/lexhist/lexhist/internal/config"
	"github.com/lexhist/lexhist/internal/jobs"
	"github.com/lexhist/lexhist/internal/store"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/sys/unix"
)

var jobsCmd = &cobra.Command{
	Use:   "jobs",
	Short: "background job commands",
}

func init() {
	rootCmd.AddCommand(jobsCmd)
	jobsCmd.SetHelpCommand(&cobra.Command{Use: "no-help", Hidden: true})
	jobsCmd.AddCommand(runJobsCmd())
	jobsCmd.AddCommand(warmCacheCmd())
}

func newCacheWarmTask(schedule string) (*jobs.CacheWarmTask, error) {
	cnf := config.LoadConfig()
	articleCache := config.GetCache(cnf)
	if articleCache == nil {
		return nil, fmt.Errorf("redis is not configured, set REDIS_ADDR")
	}

	return jobs.NewCacheWarmTask(schedule, store.NewGormStore(config.GetDb(cnf)), articleCache), nil
}

func runJobsCmd() *cobra.Command {
	var schedule string

	command := &cobra.Command{
		Use:     "run",
		Short:   "run the background jobs until interrupted",
		Example: "lexhist jobs run --schedule '@every 15m'",
		Run: func(cmd *cobra.Command, args []string) {
			task, err := newCacheWarmTask(schedule)
			if err != nil {
				logrus.Error(err)
				return
			}

			executor := jobs.NewTaskExecutor([]jobs.Task{task})
			if err := executor.Start(); err != nil {
				logrus.Error(err)
				return
			}
			logrus.Infof("job executor started, cache warm on %s", schedule)

			sigs := make(chan os.Signal, 1)
			signal.Notify(sigs, unix.SIGTERM, unix.SIGINT, unix.SIGTSTP)
			<-sigs
			// clean Ctrl+C output
			fmt.Println()

			executor.Stop()
		},
	}

	command.Flags().StringVarP(&schedule, "schedule", "s", "@every 15m", "cron schedule for the cache warm task")

	return command
}

func warmCacheCmd() *cobra.Command {
	command := &cobra.Command{
		Use:     "warm",
		Short:   "prime the article cache once and exit",
		Example: "lexhist jobs warm",
		Run: func(cmd *cobra.Command, args []string) {
			task, err := newCacheWarmTask("@every 15m")
			if err != nil {
				logrus.Error(err)
				return
			}

			task.Run()
		},
	}

	return command
}
