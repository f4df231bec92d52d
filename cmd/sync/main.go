// Command sync runs Shopify synchronizations and maintenance tasks from the
// command line, against the same stores as the API server.
package main

import "os"

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
