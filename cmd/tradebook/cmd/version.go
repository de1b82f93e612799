package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

const version = "0.3.0"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Long:  `Display the current version of the tradebook CLI.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("tradebook version %s\n", version)
		fmt.Println("Reconcile trading-venue exports into a canonical trade journal")
		fmt.Println("https://github.com/rustyeddy/tradebook")
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
