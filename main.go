package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/oshilab/oshiagent/internal/app"
)

func main() {
	// ローカル開発用。.envが存在しない環境（本番）ではエラーを無視する。
	_ = godotenv.Load()

	if err := app.Run(os.Stdout, os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
