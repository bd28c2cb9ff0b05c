package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/himanishpuri/MelodyDNA/pkg/logger"
)

func main() {
	// .env is optional; real environment variables win over it
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		logger.Warnf("ignoring .env: %v", err)
	}

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func printBanner() {
	banner := `
 __  __      _           _       ____  _   _    _
|  \/  | ___| | ___   __| |_   _|  _ \| \ | |  / \
| |\/| |/ _ \ |/ _ \ / _' | | | | | | |  \| | / _ \
| |  | |  __/ | (_) | (_| | |_| | |_| | |\  |/ ___ \
|_|  |_|\___|_|\___/ \__,_|\__, |____/|_| \_/_/   \_\
                           |___/
            Melody Search CLI Tool
`
	fmt.Fprintln(os.Stderr, banner)
}
