package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/perizinan/internal/config"
	"github.com/JonMunkholm/perizinan/internal/core"
	"github.com/JonMunkholm/perizinan/internal/database"
	"github.com/JonMunkholm/perizinan/internal/logging"
	"github.com/JonMunkholm/perizinan/internal/resilience"
)

type importFlags struct {
	sector    string
	category  string
	document  string
	sheet     string
	headerRow int
	dataRow   int
	overrides []string
}

func newImportCmd() *cobra.Command {
	var flags importFlags
	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Import a PKL sheet into the permit database (requires DATABASE_URL)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(cmd, args[0], flags)
		},
	}
	f := cmd.Flags()
	f.StringVar(&flags.sector, "sector", "", "Sector from the catalog")
	f.StringVar(&flags.category, "category", "", "Permit category from the catalog")
	f.StringVar(&flags.document, "document", "", "Document type within the category")
	f.StringVar(&flags.sheet, "sheet", "", "Sheet to read (default: first sheet containing DATA)")
	f.IntVar(&flags.headerRow, "header-row", 0, "Zero-based header row")
	f.IntVar(&flags.dataRow, "data-row", 1, "Zero-based first data row")
	f.StringArrayVar(&flags.overrides, "override", nil, "field=HEADER override (may be repeated)")
	cmd.MarkFlagRequired("sector")
	cmd.MarkFlagRequired("category")
	return cmd
}

func newRollbackCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rollback <import-id>",
		Short: "Delete every permit inserted by one import",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, closeDB, err := storeService(cmd)
			if err != nil {
				return err
			}
			defer closeDB()

			res, err := svc.RollbackImport(commandContext(cmd), args[0])
			if err != nil {
				return userError(err)
			}
			return writeJSON(cmd.OutOrStdout(), res)
		},
	}
}

func runImport(cmd *cobra.Command, path string, flags importFlags) error {
	overrides, err := parseOverrides(flags.overrides)
	if err != nil {
		return &exitErr{code: 3, msg: err.Error()}
	}

	svc, closeDB, err := storeService(cmd)
	if err != nil {
		return err
	}
	defer closeDB()

	wb, grid, err := openSheet(svc, path, flags.sheet)
	if err != nil {
		return err
	}
	defer wb.Close()

	res, err := svc.ImportPermits(commandContext(cmd), grid, core.ImportOptions{
		Sector:    flags.sector,
		Category:  flags.category,
		Document:  flags.document,
		Sheet:     flags.sheet,
		HeaderRow: flags.headerRow,
		DataRow:   flags.dataRow,
		Overrides: overrides,
	})
	if err != nil {
		return userError(err)
	}

	fmt.Fprintf(cmd.ErrOrStderr(), "inserted %d, skipped %d, failed %d (import %s)\n",
		res.Inserted, res.Skipped, len(res.Failed), res.ImportID)
	return writeJSON(cmd.OutOrStdout(), res)
}

// storeService connects to the database and builds a service that can
// write permits. The returned func closes the connection.
func storeService(cmd *cobra.Command) (*core.Service, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, &exitErr{code: 3, msg: err.Error()}
	}
	logging.SetupWriter(os.Stderr, cfg.Logging.Level, cfg.Logging.Format)

	catalog, err := config.LoadCatalog(cfg.Catalog.Path)
	if err != nil {
		return nil, nil, &exitErr{code: 3, msg: err.Error()}
	}

	ctx := commandContext(cmd)
	pool, db, err := database.Open(ctx, cfg.Database)
	if err != nil {
		return nil, nil, userError(err)
	}
	closeDB := func() {
		db.Close()
		pool.Close()
	}
	if err := database.EnsureSchema(ctx, db); err != nil {
		closeDB()
		return nil, nil, userError(err)
	}

	svc, err := core.NewService(core.Deps{
		Store:    database.New(db),
		Executor: resilience.NewExecutor(resilience.FromConfig(cfg.Resilience)),
		Limiter:  core.NewImportLimiter(1, cfg.Upload.MaxWaitTime),
		Catalog:  catalog,
	}, core.Options{Workers: cfg.Extract.Workers})
	if err != nil {
		closeDB()
		return nil, nil, err
	}
	return svc, closeDB, nil
}
