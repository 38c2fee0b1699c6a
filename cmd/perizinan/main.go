// Command perizinan extracts fields from permit spreadsheets, maps them onto
// the canonical columns and imports PKL sheets into the permit database.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/JonMunkholm/perizinan/internal/config"
	"github.com/JonMunkholm/perizinan/internal/core"
	"github.com/JonMunkholm/perizinan/internal/logging"
	"github.com/JonMunkholm/perizinan/internal/sheet"
)

// exitErr carries a numeric exit code through the cobra error path.
type exitErr struct {
	code int
	msg  string
}

func (e *exitErr) Error() string { return e.msg }

// userError maps err through core.MapError so the CLI reports the same
// message and support code as the HTTP API.
func userError(err error) error {
	msg := core.MapError(err)
	return &exitErr{code: 2, msg: fmt.Sprintf("%s (%s): %v", msg.Message, msg.Code, err)}
}

func main() {
	_ = godotenv.Load()

	root := &cobra.Command{
		Use:           "perizinan",
		Short:         "Extract, standardize and import Indonesian permit spreadsheets",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(
		newExtractCmd(),
		newSheetsCmd(),
		newStandardizeCmd(),
		newImportCmd(),
		newRollbackCmd(),
	)

	if err := root.Execute(); err != nil {
		var ee *exitErr
		if errors.As(err, &ee) {
			fmt.Fprintln(os.Stderr, "Error:", ee.msg)
			os.Exit(ee.code)
		}
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// localService builds a service without a permit store.
func localService() (*core.Service, *config.Config, error) {
	cfg, err := config.LoadLocal()
	if err != nil {
		return nil, nil, &exitErr{code: 3, msg: err.Error()}
	}
	logging.SetupWriter(os.Stderr, cfg.Logging.Level, cfg.Logging.Format)

	catalog, err := config.LoadCatalog(cfg.Catalog.Path)
	if err != nil {
		return nil, nil, &exitErr{code: 3, msg: err.Error()}
	}
	svc, err := core.NewService(core.Deps{Catalog: catalog}, core.Options{
		Workers:     cfg.Extract.Workers,
		PreviewRows: cfg.Extract.PreviewRows,
	})
	if err != nil {
		return nil, nil, err
	}
	return svc, cfg, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// openSheet opens path and resolves the sheet to read, defaulting to the
// first sheet whose name contains DATA.
func openSheet(svc *core.Service, path, name string) (*sheet.Workbook, [][]string, error) {
	wb, err := sheet.Open(path)
	if err != nil {
		return nil, nil, userError(err)
	}
	grid, err := svc.SheetRows(wb, name)
	if err != nil {
		wb.Close()
		return nil, nil, userError(err)
	}
	return wb, grid, nil
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
