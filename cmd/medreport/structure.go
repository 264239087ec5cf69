package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"medreport/internal/config"
	"medreport/internal/domain"
	"medreport/internal/export"
	"medreport/internal/logging"
	"medreport/internal/service"
)

func structureCmd() *cobra.Command {
	var (
		reportType string
		language   string
		format     string
		output     string
		timeout    time.Duration
	)
	cmd := &cobra.Command{
		Use:   "structure [file]",
		Short: "Structure one report read from a file or stdin",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := export.ParseFormat(format)
			if err != nil {
				return err
			}
			text, err := readInput(cmd.InOrStdin(), args)
			if err != nil {
				return err
			}

			a, err := loadApp()
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()
			report, err := a.reports.Structure(ctx, service.StructureInput{
				Text:       text,
				ReportType: domain.ReportType(reportType),
				Language:   language,
				Metadata:   map[string]any{"source": inputName(args)},
			})
			if err != nil {
				return err
			}

			return withOutput(cmd.OutOrStdout(), output, func(w io.Writer) error {
				return export.Write(w, report, f)
			})
		},
	}
	cmd.Flags().StringVarP(&reportType, "type", "t", string(domain.ReportTypeGeneral), "report type (ct, spine_mri, mammography, oncology, pathology, cardiac, ultrasound, general)")
	cmd.Flags().StringVarP(&language, "language", "l", "", "report language (de or en)")
	cmd.Flags().StringVarP(&format, "format", "f", string(export.FormatJSON), "output format (json, csv, xlsx)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	cmd.Flags().DurationVar(&timeout, "timeout", 2*time.Minute, "overall structuring timeout")
	return cmd
}

func extractCmd() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "extract [file]",
		Short: "Print sections, measurements, pathology sentences and training pairs of a report",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readInput(cmd.InOrStdin(), args)
			if err != nil {
				return err
			}
			a, err := loadApp()
			if err != nil {
				return err
			}
			analysis, err := a.reports.Extract(cmd.Context(), service.ExtractInput{Text: text})
			if err != nil {
				return err
			}
			return withOutput(cmd.OutOrStdout(), output, func(w io.Writer) error {
				enc := json.NewEncoder(w)
				enc.SetIndent("", "  ")
				return enc.Encode(analysis)
			})
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	return cmd
}

// loadApp wires the application with logs on stderr, keeping stdout for results.
func loadApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	logger := logging.NewWithWriter(cfg.Log, os.Stderr)
	return buildApp(cfg, logger)
}

func readInput(stdin io.Reader, args []string) (string, error) {
	if len(args) == 0 || args[0] == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return "", fmt.Errorf("read %s: %w", args[0], err)
	}
	return string(data), nil
}

func inputName(args []string) string {
	if len(args) == 0 || args[0] == "-" {
		return "stdin"
	}
	return args[0]
}

func withOutput(stdout io.Writer, path string, write func(io.Writer) error) error {
	if path == "" {
		return write(stdout)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := write(f); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
