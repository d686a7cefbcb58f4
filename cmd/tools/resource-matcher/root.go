// cmd/tools/resource-matcher/root.go
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"resource-workers/internal/catalog"
	"resource-workers/internal/common/logger"
	"resource-workers/internal/matching"

	"github.com/spf13/cobra"
)

type rootOptions struct {
	catalogPath  string
	maxResources int
	jsonOutput   bool
	verbose      bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:          "resource-matcher",
		Short:        "Validate a resource guide and run matches against it offline",
		SilenceUsage: true,
		Long: `resource-matcher loads a resource guide file the same way the worker
manager does and runs the weighted matcher or the direct filter against it.`,
	}

	root.PersistentFlags().StringVarP(&opts.catalogPath, "catalog", "c", "./configs/resource_guide.json", "Path to the resource guide JSON file")
	root.PersistentFlags().IntVar(&opts.maxResources, "max-resources", 0, "Stop accepting resources after this many (0 = no limit)")
	root.PersistentFlags().BoolVar(&opts.jsonOutput, "json", false, "Print JSON instead of a table")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Log catalog loading")

	root.AddCommand(newValidateCmd(opts), newMatchCmd(opts), newFilterCmd(opts))
	return root
}

// loadCatalog parses the file directly so parse errors surface instead of
// being replaced by the fallback catalog.
func (o *rootOptions) loadCatalog(ctx context.Context) (*catalog.Catalog, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	src := catalog.NewFileSource(o.catalogPath)
	data, err := src.Fetch(ctx)
	if err != nil {
		return nil, err
	}
	return catalog.Parse(data, catalog.ParseOptions{Source: src.Name(), MaxResources: o.maxResources})
}

func (o *rootOptions) logger() logger.Logger {
	if o.verbose {
		return logger.NewStructured("debug", "console")
	}
	return logger.NewNoOpLogger()
}

func (o *rootOptions) engine(cmd *cobra.Command) (*matching.Engine, error) {
	cat, err := o.loadCatalog(cmd.Context())
	if err != nil {
		return nil, err
	}
	store := catalog.NewStore(&catalog.StaticSource{Label: "file"}, catalog.StoreOptions{}, o.logger())
	store.Set(cat)
	return matching.NewEngine(store, matching.DefaultOptions(), o.logger()), nil
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	return nil
}
