package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"salestracker/internal/app"
	"salestracker/pkg/contracts"
)

func main() {
	exportDir := flag.String("export", "", "write every view's summary table as CSV to this directory and exit")
	bom := flag.Bool("bom", false, "prefix exported CSV files with a UTF-8 BOM")
	version := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *version {
		fmt.Println(contracts.GetFullVersionString())
		return
	}

	application, err := app.NewApplication()
	if err != nil {
		slog.Error("Failed to initialize application", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if *exportDir != "" {
		if _, err := application.Export(context.Background(), *exportDir, *bom); err != nil {
			slog.Error("Export failed", slog.String("error", err.Error()))
			os.Exit(1)
		}
		return
	}

	if err := application.Run(); err != nil {
		slog.Error("Application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
