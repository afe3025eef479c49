package main

import "os"

func main() {
	if err := rootCmd.Execute(); err != nil {
		logFailure(err)
		os.Exit(1)
	}
}
