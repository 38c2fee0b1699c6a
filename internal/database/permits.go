package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
)

// PermitFields holds the descriptive permit columns shared by inserts and
// reads. Unset values are stored as NULL.
type PermitFields struct {
	NamaPenggunaLayanan               pgtype.Text `json:"nama_pengguna_layanan"`
	Nib                               pgtype.Text `json:"nib"`
	Alamat                            pgtype.Text `json:"alamat"`
	PemilikPengurus                   pgtype.Text `json:"pemilik_pengurus"`
	LokasiUsaha                       pgtype.Text `json:"lokasi_usaha"`
	LuasLahanUsaha                    pgtype.Text `json:"luas_lahan_usaha"`
	Kbli                              pgtype.Text `json:"kbli"`
	JenisUsaha                        pgtype.Text `json:"jenis_usaha"`
	Resiko                            pgtype.Text `json:"resiko"`
	Kapasitas                         pgtype.Text `json:"kapasitas"`
	JenisPermohonan                   pgtype.Text `json:"jenis_permohonan"`
	NomorPermohonan                   pgtype.Text `json:"nomor_permohonan"`
	TanggalPermohonan                 pgtype.Text `json:"tanggal_permohonan"`
	NomorTanggalPermohonanRekomendasi pgtype.Text `json:"nomor_tanggal_permohonan_rekomendasi"`
	NomorTanggalRekomendasi           pgtype.Text `json:"nomor_tanggal_rekomendasi"`
	NomorIzin                         pgtype.Text `json:"nomor_izin"`
	TanggalIzin                       pgtype.Text `json:"tanggal_izin"`
	MasaBerlaku                       pgtype.Text `json:"masa_berlaku"`
	Npwp                              pgtype.Text `json:"npwp"`
	Telepon                           pgtype.Text `json:"telepon"`
	Email                             pgtype.Text `json:"email"`
	Keterangan                        pgtype.Text `json:"keterangan"`
	JenisDokumen                      pgtype.Text `json:"jenis_dokumen"`
}

// FieldColumns lists the PermitFields columns in declaration order.
var FieldColumns = []string{
	"nama_pengguna_layanan", "nib", "alamat", "pemilik_pengurus",
	"lokasi_usaha", "luas_lahan_usaha", "kbli", "jenis_usaha", "resiko",
	"kapasitas", "jenis_permohonan", "nomor_permohonan", "tanggal_permohonan",
	"nomor_tanggal_permohonan_rekomendasi", "nomor_tanggal_rekomendasi",
	"nomor_izin", "tanggal_izin", "masa_berlaku", "npwp", "telepon", "email",
	"keterangan", "jenis_dokumen",
}

func (f *PermitFields) pointers() []*pgtype.Text {
	return []*pgtype.Text{
		&f.NamaPenggunaLayanan, &f.Nib, &f.Alamat, &f.PemilikPengurus,
		&f.LokasiUsaha, &f.LuasLahanUsaha, &f.Kbli, &f.JenisUsaha, &f.Resiko,
		&f.Kapasitas, &f.JenisPermohonan, &f.NomorPermohonan, &f.TanggalPermohonan,
		&f.NomorTanggalPermohonanRekomendasi, &f.NomorTanggalRekomendasi,
		&f.NomorIzin, &f.TanggalIzin, &f.MasaBerlaku, &f.Npwp, &f.Telepon, &f.Email,
		&f.Keterangan, &f.JenisDokumen,
	}
}

// Field returns the value of column, or an invalid Text if column is not
// a PermitFields column.
func (f *PermitFields) Field(column string) pgtype.Text {
	for i, p := range f.pointers() {
		if FieldColumns[i] == column {
			return *p
		}
	}
	return pgtype.Text{}
}

// SetField assigns column and reports whether it exists.
func (f *PermitFields) SetField(column string, v pgtype.Text) bool {
	for i, p := range f.pointers() {
		if FieldColumns[i] == column {
			*p = v
			return true
		}
	}
	return false
}

type Permit struct {
	ID                int64       `json:"id"`
	ImportID          pgtype.UUID `json:"import_id"`
	Sektor            string      `json:"sektor"`
	KategoriPerizinan string      `json:"kategori_perizinan"`
	PermitFields
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type InsertPermitParams struct {
	ImportID          pgtype.UUID
	Sektor            string
	KategoriPerizinan string
	PermitFields
}

const insertPermit = `-- name: InsertPermit :one
INSERT INTO perizinan (
	import_id, sektor, kategori_perizinan,
	nama_pengguna_layanan, nib, alamat, pemilik_pengurus,
	lokasi_usaha, luas_lahan_usaha, kbli, jenis_usaha, resiko,
	kapasitas, jenis_permohonan, nomor_permohonan, tanggal_permohonan,
	nomor_tanggal_permohonan_rekomendasi, nomor_tanggal_rekomendasi,
	nomor_izin, tanggal_izin, masa_berlaku, npwp, telepon, email,
	keterangan, jenis_dokumen
) VALUES (
	$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13,
	$14, $15, $16, $17, $18, $19, $20, $21, $22, $23, $24, $25, $26
)
RETURNING id`

func (q *Queries) InsertPermit(ctx context.Context, arg InsertPermitParams) (int64, error) {
	args := []any{arg.ImportID, arg.Sektor, arg.KategoriPerizinan}
	for _, p := range arg.pointers() {
		args = append(args, *p)
	}

	var id int64
	if err := q.db.QueryRowContext(ctx, insertPermit, args...).Scan(&id); err != nil {
		return 0, fmt.Errorf("insert permit: %w", err)
	}
	return id, nil
}

const listPermits = `-- name: ListPermits :many
SELECT id, import_id, sektor, kategori_perizinan,
	nama_pengguna_layanan, nib, alamat, pemilik_pengurus,
	lokasi_usaha, luas_lahan_usaha, kbli, jenis_usaha, resiko,
	kapasitas, jenis_permohonan, nomor_permohonan, tanggal_permohonan,
	nomor_tanggal_permohonan_rekomendasi, nomor_tanggal_rekomendasi,
	nomor_izin, tanggal_izin, masa_berlaku, npwp, telepon, email,
	keterangan, jenis_dokumen, created_at, updated_at
FROM perizinan
WHERE ($1::text = '' OR sektor = $1)
ORDER BY created_at DESC, id DESC
LIMIT $2 OFFSET $3`

type ListPermitsParams struct {
	Sektor string
	Limit  int32
	Offset int32
}

// ListPermits returns permits newest first. An empty Sektor matches all.
func (q *Queries) ListPermits(ctx context.Context, arg ListPermitsParams) ([]Permit, error) {
	rows, err := q.db.QueryContext(ctx, listPermits, arg.Sektor, arg.Limit, arg.Offset)
	if err != nil {
		return nil, fmt.Errorf("list permits: %w", err)
	}
	defer rows.Close()

	var items []Permit
	for rows.Next() {
		var p Permit
		dest := []any{&p.ID, &p.ImportID, &p.Sektor, &p.KategoriPerizinan}
		for _, f := range p.pointers() {
			dest = append(dest, f)
		}
		dest = append(dest, &p.CreatedAt, &p.UpdatedAt)

		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scan permit: %w", err)
		}
		items = append(items, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate permits: %w", err)
	}
	return items, nil
}

const countPermits = `-- name: CountPermits :one
SELECT count(*) FROM perizinan
WHERE ($1::text = '' OR sektor = $1)`

func (q *Queries) CountPermits(ctx context.Context, sektor string) (int64, error) {
	var n int64
	if err := q.db.QueryRowContext(ctx, countPermits, sektor).Scan(&n); err != nil {
		return 0, fmt.Errorf("count permits: %w", err)
	}
	return n, nil
}

const deleteImport = `-- name: DeleteImport :execrows
DELETE FROM perizinan WHERE import_id = $1`

// DeleteImport removes every permit written by one import batch.
func (q *Queries) DeleteImport(ctx context.Context, importID pgtype.UUID) (int64, error) {
	res, err := q.db.ExecContext(ctx, deleteImport, importID)
	if err != nil {
		return 0, fmt.Errorf("delete import: %w", err)
	}
	return res.RowsAffected()
}
