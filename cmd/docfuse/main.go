// Command docfuse parses documents, prints their extracted content, and
// merges batches of files into a single spreadsheet workbook.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/tsawler/docfuse"
	"github.com/tsawler/docfuse/clean"
	"github.com/tsawler/docfuse/merge"
	"github.com/tsawler/docfuse/model"
)

func main() {
	app := &cli.App{
		Name:  "docfuse",
		Usage: "parse, clean, and merge documents into spreadsheets",
		Commands: []*cli.Command{
			formatsCommand(),
			parseCommand(),
			mergeCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func formatsCommand() *cli.Command {
	return &cli.Command{
		Name:  "formats",
		Usage: "list supported file extensions",
		Action: func(c *cli.Context) error {
			fmt.Println(strings.Join(docfuse.SupportedExtensions(), " "))
			return nil
		},
	}
}

func parseCommand() *cli.Command {
	return &cli.Command{
		Name:      "parse",
		Usage:     "parse one document and print its content",
		ArgsUsage: "<file>",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "tables",
				Usage: "print extracted tables instead of text",
			},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return cli.Exit("parse requires exactly one file", 1)
			}
			path := c.Args().First()

			doc, warnings, err := docfuse.Parse(path)
			if err != nil {
				return fmt.Errorf("parsing %s: %w", path, err)
			}

			printMetadata(doc)
			for _, w := range warnings {
				fmt.Fprintln(os.Stderr, "warning:", w.String())
			}

			if c.Bool("tables") {
				for i, t := range doc.Content.Tables {
					fmt.Printf("\nTable %d (%d rows x %d columns)\n",
						i+1, t.RowCount(), t.ColumnCount())
					fmt.Println(t.String())
				}
				return nil
			}

			fmt.Println()
			fmt.Println(doc.Content.Text)
			return nil
		},
	}
}

func printMetadata(doc *model.Document) {
	md := doc.Metadata
	fmt.Printf("File:    %s\n", md.Name)
	fmt.Printf("Format:  %s\n", md.Format)
	fmt.Printf("Size:    %.2f MB\n", md.SizeMB)
	if md.PageCount > 0 {
		fmt.Printf("Pages:   %d\n", md.PageCount)
	}
	fmt.Printf("Tables:  %d\n", len(doc.Content.Tables))
}

func mergeCommand() *cli.Command {
	return &cli.Command{
		Name:      "merge",
		Usage:     "merge documents into one xlsx workbook",
		ArgsUsage: "<files...>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "output",
				Aliases:  []string{"o"},
				Usage:    "output workbook path",
				Required: true,
			},
			&cli.BoolFlag{
				Name:  "clean",
				Usage: "clean every table before writing it",
			},
			&cli.StringFlag{
				Name:  "clean-config",
				Usage: "YAML cleaning configuration (implies --clean)",
			},
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "log per-file progress",
			},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() == 0 {
				return cli.Exit("merge requires at least one input file", 1)
			}

			level := slog.LevelWarn
			if c.Bool("verbose") {
				level = slog.LevelInfo
			}
			logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
				Level: level,
			}))

			opts := []merge.Option{merge.WithLogger(logger)}
			if c.Bool("clean") || c.String("clean-config") != "" {
				cfg := clean.DefaultConfig()
				if path := c.String("clean-config"); path != "" {
					var err error
					if cfg, err = clean.LoadConfig(path); err != nil {
						return err
					}
				}
				opts = append(opts, merge.WithAutoClean(cfg))
			}

			m := merge.New(opts...)
			added := m.AddFiles(c.Args().Slice())
			if added < c.NArg() {
				fmt.Fprintf(os.Stderr, "skipped %d of %d files\n",
					c.NArg()-added, c.NArg())
			}

			output := c.String("output")
			if !m.MergeToExcel(output) {
				return cli.Exit("merge failed", 1)
			}

			fmt.Printf("merged %d files into %s\n", added, output)
			return nil
		},
	}
}
