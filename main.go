package main

import (
	"flag"
	"fmt"
	"os"

	"yashubustudio/programmap/internal/app"
)

func main() {
	configPath := flag.String("config", "", "config file (default config.json)")
	flag.Parse()
	if err := app.Run(*configPath); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
