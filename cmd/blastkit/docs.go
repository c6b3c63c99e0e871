package main

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/cobra/doc"
)

// front matter for each generated page
const docHeader = `---
title: %s
---
`

var docsCmd = &cobra.Command{
	Use:    "docs DIR",
	Short:  "Generate Markdown reference pages for every command",
	Args:   cobra.ExactArgs(1),
	Hidden: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := os.MkdirAll(args[0], 0755); err != nil {
			return fmt.Errorf("creating docs directory: %w", err)
		}
		if err := makeDocs(rootCmd, args[0]); err != nil {
			return fmt.Errorf("generating docs: %w", err)
		}
		fmt.Printf("Docs written to %s\n", args[0])
		return nil
	},
}

// makeDocs writes one Markdown page per command under dir.
func makeDocs(root *cobra.Command, dir string) error {
	root.DisableAutoGenTag = true
	return doc.GenMarkdownTreeCustom(root, dir, filePrepender, linkHandler)
}

// filePrepender titles a page after its command path, e.g. "blastkit db make".
func filePrepender(filename string) string {
	name := filepath.Base(filename)
	base := strings.TrimSuffix(name, path.Ext(name))
	return fmt.Sprintf(docHeader, strings.ReplaceAll(base, "_", " "))
}

// linkHandler returns the URL of a command page.
func linkHandler(filename string) string {
	name := filepath.Base(filename)
	return strings.TrimSuffix(name, path.Ext(name))
}
