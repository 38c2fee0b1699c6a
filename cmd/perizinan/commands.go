package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/perizinan/internal/core"
	"github.com/JonMunkholm/perizinan/internal/mapping"
	"github.com/JonMunkholm/perizinan/internal/sheet"
)

func newExtractCmd() *cobra.Command {
	var column string
	cmd := &cobra.Command{
		Use:   "extract <text>",
		Short: "Extract names and identifiers from one cell",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, _, err := localService()
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), svc.Extract(args[0], column))
		},
	}
	cmd.Flags().StringVar(&column, "column", "", "Header the cell sits under")
	return cmd
}

type sheetsFlags struct {
	sheet   string
	markRow int
	markCol int
	out     string
}

func newSheetsCmd() *cobra.Command {
	var flags sheetsFlags
	cmd := &cobra.Command{
		Use:   "sheets <file>",
		Short: "List sheets and preview rows, or mark a table start with --out",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, _, err := localService()
			if err != nil {
				return err
			}
			wb, err := sheet.Open(args[0])
			if err != nil {
				return userError(err)
			}
			defer wb.Close()

			if flags.out == "" {
				preview, err := svc.Preview(wb, flags.sheet)
				if err != nil {
					return userError(err)
				}
				return writeJSON(cmd.OutOrStdout(), preview)
			}

			grid, err := svc.SheetRows(wb, flags.sheet)
			if err != nil {
				return userError(err)
			}
			return writeFile(flags.out, func(f *os.File) error {
				return sheet.WriteMarked(f, grid, flags.markRow, flags.markCol)
			})
		},
	}
	f := cmd.Flags()
	f.StringVar(&flags.sheet, "sheet", "", "Sheet to read (default: first sheet containing DATA)")
	f.IntVar(&flags.markRow, "mark-row", 0, "Zero-based row to highlight")
	f.IntVar(&flags.markCol, "mark-col", 0, "Zero-based column to highlight")
	f.StringVar(&flags.out, "out", "", "Write the sheet with the marked cell to this xlsx file")
	return cmd
}

type standardizeFlags struct {
	sheet     string
	startRow  int
	startCol  int
	headerRow int
	parentRow int
	childRow  int
	nested    bool
	maps      []string
	extracts  []string
	month     string
	year      int
	out       string
}

func newStandardizeCmd() *cobra.Command {
	var flags standardizeFlags
	cmd := &cobra.Command{
		Use:   "standardize <file>",
		Short: "Map a sheet onto the NIB, Nama, KBLI, Alamat, NPWP, Nomor and Email columns",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			flags.nested = cmd.Flags().Changed("parent-row") || cmd.Flags().Changed("child-row")
			return runStandardize(cmd, args[0], flags)
		},
	}
	f := cmd.Flags()
	f.StringVar(&flags.sheet, "sheet", "", "Sheet to read (default: first sheet containing DATA)")
	f.IntVar(&flags.startRow, "start-row", 0, "Zero-based row where the table starts")
	f.IntVar(&flags.startCol, "start-col", 0, "Zero-based column where the table starts")
	f.IntVar(&flags.headerRow, "header-row", 0, "Header row, relative to --start-row")
	f.IntVar(&flags.parentRow, "parent-row", 0, "Parent header row for two-level headers")
	f.IntVar(&flags.childRow, "child-row", 1, "Child header row for two-level headers")
	f.StringArrayVar(&flags.maps, "map", nil, "Field=Column mapping (may be repeated)")
	f.StringArrayVar(&flags.extracts, "extract", nil, "Column=option,option extraction (may be repeated)")
	f.StringVar(&flags.month, "month", "", "Month label; with --year, output carries a BULAN column")
	f.IntVar(&flags.year, "year", 0, "Year for --month")
	f.StringVar(&flags.out, "out", "", "Write an xlsx file instead of JSON to stdout")
	cmd.MarkFlagsMutuallyExclusive("header-row", "parent-row")
	cmd.MarkFlagsRequiredTogether("month", "year")
	return cmd
}

func runStandardize(cmd *cobra.Command, path string, flags standardizeFlags) error {
	fields, err := parseFieldMap(flags.maps)
	if err != nil {
		return &exitErr{code: 3, msg: err.Error()}
	}
	extractions, err := parseExtractions(flags.extracts)
	if err != nil {
		return &exitErr{code: 3, msg: err.Error()}
	}

	svc, _, err := localService()
	if err != nil {
		return err
	}
	wb, grid, err := openSheet(svc, path, flags.sheet)
	if err != nil {
		return err
	}
	defer wb.Close()

	opts := core.StandardizeOptions{
		Header: mapping.HeaderSpec{
			StartRow:  flags.startRow,
			StartCol:  flags.startCol,
			HeaderRow: flags.headerRow,
			Nested:    flags.nested,
			ParentRow: flags.parentRow,
			ChildRow:  flags.childRow,
		},
		Fields:      fields,
		Extractions: extractions,
	}
	ctx := commandContext(cmd)

	if flags.month != "" {
		sess, err := svc.NewSession()
		if err != nil {
			return userError(err)
		}
		view, err := svc.StackSession(ctx, sess.ID, grid, opts, flags.month, flags.year)
		if err != nil {
			return userError(err)
		}
		if flags.out == "" {
			return writeJSON(cmd.OutOrStdout(), view)
		}
		return writeFile(flags.out, func(f *os.File) error {
			return svc.ExportSession(f, sess.ID)
		})
	}

	res, err := svc.Standardize(ctx, grid, opts)
	if err != nil {
		return userError(err)
	}
	for _, st := range res.Stats {
		fmt.Fprintf(cmd.ErrOrStderr(), "%s: %d/%d\n", st.Derived, st.Hits, st.Total)
	}
	if flags.out == "" {
		return writeJSON(cmd.OutOrStdout(), res)
	}
	table := mapping.RecordsTable(res.Records)
	return writeFile(flags.out, func(f *os.File) error {
		return sheet.WriteTable(f, "Data", table.Columns, table.Rows)
	})
}

// writeFile creates path, runs write and reports where the file went.
func writeFile(path string, write func(*os.File) error) error {
	if !strings.HasSuffix(strings.ToLower(path), ".xlsx") {
		return &exitErr{code: 3, msg: fmt.Sprintf("--out %q must end in .xlsx", path)}
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return userError(err)
	}
	if err := f.Close(); err != nil {
		return err
	}
	fmt.Fprintln(os.Stderr, "wrote", path)
	return nil
}
