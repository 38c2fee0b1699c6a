package database

import (
	"context"
	"database/sql"
	"fmt"
)

const schemaLockID int64 = 2025061501

const schemaDDL = `
CREATE TABLE IF NOT EXISTS perizinan (
	id BIGSERIAL PRIMARY KEY,
	import_id UUID,
	sektor TEXT NOT NULL,
	kategori_perizinan TEXT NOT NULL,
	nama_pengguna_layanan TEXT,
	nib TEXT,
	alamat TEXT,
	pemilik_pengurus TEXT,
	lokasi_usaha TEXT,
	luas_lahan_usaha TEXT,
	kbli TEXT,
	jenis_usaha TEXT,
	resiko TEXT,
	kapasitas TEXT,
	jenis_permohonan TEXT,
	nomor_permohonan TEXT,
	tanggal_permohonan TEXT,
	nomor_tanggal_permohonan_rekomendasi TEXT,
	nomor_tanggal_rekomendasi TEXT,
	nomor_izin TEXT,
	tanggal_izin TEXT,
	masa_berlaku TEXT,
	npwp TEXT,
	telepon TEXT,
	email TEXT,
	keterangan TEXT,
	jenis_dokumen TEXT,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_perizinan_sektor ON perizinan(sektor);
CREATE INDEX IF NOT EXISTS idx_perizinan_import_id ON perizinan(import_id);
CREATE INDEX IF NOT EXISTS idx_perizinan_created_at ON perizinan(created_at DESC);
`

// EnsureSchema creates the permit table and indexes. Concurrent callers
// are serialized with a transaction-scoped advisory lock.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, schemaLockID); err != nil {
		return fmt.Errorf("acquire schema lock: %w", err)
	}
	if _, err := tx.ExecContext(ctx, schemaDDL); err != nil {
		return fmt.Errorf("execute schema ddl: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema tx: %w", err)
	}
	return nil
}
