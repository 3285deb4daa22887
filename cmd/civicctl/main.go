// civicctl — консольная утилита оператора
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var Version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:           "civicctl",
		Short:         "Operator tool for the civic complaint desk",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().String("env", "", "Path to a .env file")

	rootCmd.AddCommand(seedCmd())
	rootCmd.AddCommand(chatCmd())
	rootCmd.AddCommand(complaintsCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
