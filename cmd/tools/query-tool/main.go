// cmd/tools/query-tool/main.go
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	apihttp "contract-query-workers/internal/common/http"
	"contract-query-workers/internal/nlp/pipeline"
	"contract-query-workers/pkg/registry"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func main() {
	if err := newRootCmd(os.Stdout).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(out io.Writer) *cobra.Command {
	root := &cobra.Command{
		Use:          "query-tool",
		Short:        "Interpret contract queries and manage the column registry",
		SilenceUsage: true,
	}
	root.SetOut(out)
	root.AddCommand(newParseCmd(), newDecodeCmd(), newRegistryCmd())
	return root
}

// ==========================
// parse
// ==========================

func newParseCmd() *cobra.Command {
	var (
		registryPath   string
		dictionaryPath string
		asOf           string
		server         string
		sessionID      string
		timeout        time.Duration
	)

	cmd := &cobra.Command{
		Use:   "parse [query...]",
		Short: "Interpret a query locally, or against a running API with --server",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := strings.Join(args, " ")

			if server != "" {
				ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
				defer cancel()
				raw, err := apihttp.NewClient(server, timeout).ParseQuery(ctx, apihttp.ParseRequest{
					Query:     query,
					SessionID: sessionID,
					AsOf:      asOf,
				})
				if err != nil {
					return err
				}
				return writeIndented(cmd.OutOrStdout(), raw)
			}

			reg, dict, err := loadRegistry(registryPath, dictionaryPath)
			if err != nil {
				return err
			}
			p := pipeline.NewProcessor(reg, dict)

			var now time.Time
			if asOf != "" {
				if now, err = time.Parse("2006-01-02", asOf); err != nil {
					return fmt.Errorf("--as-of: %w", err)
				}
			} else {
				now = time.Now()
			}

			data, err := pipeline.Encode(p.ProcessAt(query, now))
			if err != nil {
				return err
			}
			return writeIndented(cmd.OutOrStdout(), data)
		},
	}

	cmd.Flags().StringVar(&registryPath, "registry", "", "column registry file (YAML or JSON); built-in when empty")
	cmd.Flags().StringVar(&dictionaryPath, "dictionary", "", "spell dictionary file layered over the built-in corrections")
	cmd.Flags().StringVar(&asOf, "as-of", "", "reference date for relative phrases (YYYY-MM-DD)")
	cmd.Flags().StringVar(&server, "server", "", "base URL of a running query API")
	cmd.Flags().StringVar(&sessionID, "session", "", "session id sent with --server")
	cmd.Flags().DurationVar(&timeout, "timeout", 10*time.Second, "request timeout for --server")
	return cmd
}

func loadRegistry(registryPath, dictionaryPath string) (*registry.Registry, *registry.Dictionary, error) {
	reg := registry.Default()
	if registryPath != "" {
		var err error
		if reg, err = registry.LoadRegistry(registryPath); err != nil {
			return nil, nil, err
		}
	}

	dict := registry.DefaultDictionary()
	if dictionaryPath != "" {
		var err error
		if dict, err = registry.LoadDictionary(dictionaryPath); err != nil {
			return nil, nil, err
		}
	}
	return reg, dict, nil
}

// ==========================
// decode
// ==========================

func newDecodeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "decode <file|->",
		Short: "Check that a stored result document is well formed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				data []byte
				err  error
			)
			if args[0] == "-" {
				data, err = io.ReadAll(cmd.InOrStdin())
			} else {
				data, err = os.ReadFile(args[0])
			}
			if err != nil {
				return err
			}

			result, err := pipeline.Decode(data)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "ok: %s / %s, %d entities, %d errors\n",
				result.Metadata.QueryType, result.Metadata.ActionType, len(result.Entities), len(result.Errors))
			return nil
		},
	}
}

// ==========================
// registry
// ==========================

func newRegistryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "registry",
		Short: "Inspect column registry files",
	}

	var dictionaryPath string
	validate := &cobra.Command{
		Use:   "validate <file>",
		Short: "Load a registry file and report its tables",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, dict, err := loadRegistry(args[0], dictionaryPath)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, t := range reg.Tables() {
				fmt.Fprintf(out, "%-14s pk=%-14s columns=%d\n", t, reg.PrimaryKey(t), len(reg.Columns(t)))
			}
			fmt.Fprintf(out, "corrections=%d\n", dict.Len())
			return nil
		},
	}
	validate.Flags().StringVar(&dictionaryPath, "dictionary", "", "also load this spell dictionary")

	var format, from string
	export := &cobra.Command{
		Use:   "export",
		Short: "Print a registry schema as YAML or JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, _, err := loadRegistry(from, "")
			if err != nil {
				return err
			}
			schema := reg.Schema()

			out := cmd.OutOrStdout()
			switch format {
			case "json":
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(schema)
			case "yaml":
				enc := yaml.NewEncoder(out)
				enc.SetIndent(2)
				if err := enc.Encode(schema); err != nil {
					return err
				}
				return enc.Close()
			default:
				return fmt.Errorf("unknown format %q (want yaml or json)", format)
			}
		},
	}
	export.Flags().StringVar(&format, "format", "yaml", "output format: yaml or json")
	export.Flags().StringVar(&from, "from", "", "registry file to re-export; built-in when empty")

	cmd.AddCommand(validate, export)
	return cmd
}

func writeIndented(out io.Writer, data []byte) error {
	var buf bytes.Buffer
	if err := json.Indent(&buf, data, "", "  "); err != nil {
		return err
	}
	buf.WriteByte('\n')
	_, err := buf.WriteTo(out)
	return err
}
