package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Verify the task store",
	Long: `Validate the on-disk document against the task schema and check that
every task id is unique. Reports problems without modifying the store.`,
	Run: func(cmd *cobra.Command, args []string) {
		st, err := getStore()
		if err != nil {
			handleError(err)
		}

		if err := st.Verify(); err != nil {
			handleError(err)
		}

		printSuccess(os.Stdout, fmt.Sprintf("%s: OK", st.Path()), jsonOutput)
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)
}
