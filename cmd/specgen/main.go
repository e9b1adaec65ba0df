package main

import "specgen/pkg/lib"

func main() {
	rootCmd.AddCommand(buildCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(buildersCmd)
	rootCmd.AddCommand(inspectCmd)
	rootCmd.AddCommand(initCmd)

	rootCmd.SilenceErrors = true
	rootCmd.SilenceUsage = true

	if err := rootCmd.Execute(); err != nil {
		lib.Exit(err)
	}
}
