// Command wordvec compiles and queries persisted word-embedding indexes.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/fatih/color"
	"github.com/hupe1980/wordvec"
	s3store "github.com/hupe1980/wordvec/blobstore/s3"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var (
	// version is set by goreleaser at build time
	version = "dev"

	// CLI flags
	dimension int
	output    string
	indexName string
	inserts   []string
	indexPath string
	verbose   bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "wordvec",
		Short:         "Compile and query persisted word-embedding indexes",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	compileCmd := &cobra.Command{
		Use:   "compile CORPUS",
		Short: "Compile a corpus into a binary index file",
		Long: "Compile merges manual entries with a word-vector corpus and writes a binary index.\n" +
			"CORPUS is a local path or an s3://bucket/key URL; .gz, .zst and .lz4 corpora are\n" +
			"decompressed transparently.",
		Args: cobra.ExactArgs(1),
		RunE: runCompile,
	}
	compileCmd.Flags().IntVarP(&dimension, "dimension", "d", 0, "Vector dimension (required)")
	compileCmd.Flags().StringVarP(&output, "output", "o", "", "Output index path (required)")
	compileCmd.Flags().StringVarP(&indexName, "name", "n", "", "Logical index name")
	compileCmd.Flags().StringArrayVar(&inserts, "insert", nil, `Manual entry ("word v1 v2 ..."), wins over the corpus; repeatable`)
	_ = compileCmd.MarkFlagRequired("dimension")
	_ = compileCmd.MarkFlagRequired("output")

	lookupCmd := &cobra.Command{
		Use:   "lookup WORD...",
		Short: "Look up vectors for one or more words",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runLookup,
	}
	lookupCmd.Flags().StringVarP(&indexPath, "index", "i", "", "Index file path (required)")
	_ = lookupCmd.MarkFlagRequired("index")

	infoCmd := &cobra.Command{
		Use:   "info",
		Short: "Print summary information about an index file",
		Args:  cobra.NoArgs,
		RunE:  runInfo,
	}
	infoCmd.Flags().StringVarP(&indexPath, "index", "i", "", "Index file path (required)")
	_ = infoCmd.MarkFlagRequired("index")

	rootCmd.AddCommand(compileCmd)
	rootCmd.AddCommand(lookupCmd)
	rootCmd.AddCommand(infoCmd)

	if err := rootCmd.Execute(); err != nil {
		color.Red("Error: %v", err)
		os.Exit(1)
	}
}

func newLogger() *wordvec.Logger {
	if verbose {
		return wordvec.NewTextLogger(slog.LevelDebug)
	}
	return wordvec.NoopLogger()
}

func runCompile(cmd *cobra.Command, args []string) error {
	corpusArg := args[0]

	name := indexName
	if name == "" {
		name = strings.TrimSuffix(output, ".wv")
	}

	b, err := wordvec.Create(output, name, dimension, wordvec.WithLogger(newLogger()))
	if err != nil {
		return err
	}
	defer b.Close()

	for _, line := range inserts {
		if err := b.ParseInsert(line); err != nil {
			return fmt.Errorf("manual entry %q: %w", line, err)
		}
	}

	if bucket, key, ok := parseS3URL(corpusArg); ok {
		ctx := cmd.Context()
		cfg, err := config.LoadDefaultConfig(ctx)
		if err != nil {
			return fmt.Errorf("load AWS config: %w", err)
		}
		store := s3store.NewStore(s3.NewFromConfig(cfg), bucket, "")
		if err := b.CompileFromStore(ctx, store, key); err != nil {
			return err
		}
	} else if err := b.Compile(corpusArg); err != nil {
		return err
	}

	color.Green("✓ Compiled %s", output)
	return nil
}

func runLookup(cmd *cobra.Command, args []string) error {
	idx, err := wordvec.Open(indexPath, wordvec.WithLogger(newLogger()))
	if err != nil {
		return err
	}
	defer idx.Close()

	// Lookups are independent and the index is safe for concurrent
	// readers, so fan out and print in argument order.
	results := make([]string, len(args))
	var g errgroup.Group
	for i, word := range args {
		i, word := i, word
		g.Go(func() error {
			vec := idx.Lookup(word)
			var sb strings.Builder
			for j, v := range vec {
				if j > 0 {
					sb.WriteByte(' ')
				}
				fmt.Fprintf(&sb, "%g", v)
			}
			results[i] = sb.String()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	bold := color.New(color.Bold)
	faint := color.New(color.Faint)
	for i, word := range args {
		bold.Print(word)
		if !idx.Contains(word) {
			faint.Print(" (OOV)")
		}
		fmt.Printf(" %s\n", results[i])
	}
	return nil
}

func runInfo(cmd *cobra.Command, args []string) error {
	idx, err := wordvec.Open(indexPath, wordvec.WithLogger(newLogger()))
	if err != nil {
		return err
	}
	defer idx.Close()

	st, err := os.Stat(indexPath)
	if err != nil {
		return err
	}

	bold := color.New(color.Bold)
	bold.Println(indexPath)
	fmt.Printf("  entries:   %d\n", idx.Len())
	fmt.Printf("  dimension: %d\n", idx.Dimension())
	fmt.Printf("  size:      %d bytes\n", st.Size())
	return nil
}

// parseS3URL splits s3://bucket/key into its parts.
func parseS3URL(raw string) (bucket, key string, ok bool) {
	rest, found := strings.CutPrefix(raw, "s3://")
	if !found {
		return "", "", false
	}
	bucket, key, found = strings.Cut(rest, "/")
	if !found || bucket == "" || key == "" {
		return "", "", false
	}
	return bucket, key, true
}
