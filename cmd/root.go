package cmd

import (
	"github.com/spf13/cobra"
)

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "slackbridge",
	Short: "REST proxy for Slack OAuth and messaging",
	Long: `slackbridge exposes a simplified REST API in front of the Slack Web
API: OAuth2 authorization-code login plus send, schedule, edit, delete,
and retrieve operations for messages, forwarded with the caller's bearer
token and normalized into a uniform JSON envelope.`,
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "slackbridge.yml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose logging")
}
