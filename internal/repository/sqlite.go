package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/ivanoskov/civic_bot/internal/model"
	_ "modernc.org/sqlite"
)

// SQLiteRepository — хранилище по умолчанию, одна база в файле
type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	dsn := dbPath + "?_journal=WAL&_sync=NORMAL&_busy_timeout=5000"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	repo := &SQLiteRepository{db: db}
	if err := repo.initSchema(); err != nil {
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return repo, nil
}

func (r *SQLiteRepository) initSchema() error {
	query := `
	PRAGMA busy_timeout = 5000;
	CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		login_id TEXT NOT NULL UNIQUE,
		name TEXT NOT NULL,
		mobile TEXT NOT NULL,
		area TEXT NOT NULL,
		ward_number TEXT NOT NULL,
		created_at INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS sessions (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL REFERENCES users(id),
		phone_number TEXT NOT NULL,
		state TEXT NOT NULL,
		login_id TEXT NOT NULL,
		created_at INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS complaints (
		id TEXT PRIMARY KEY,
		complaint_id TEXT NOT NULL UNIQUE,
		user_id TEXT NOT NULL,
		login_id TEXT NOT NULL,
		category TEXT NOT NULL,
		sub_issue TEXT NOT NULL,
		description TEXT,
		image_url TEXT,
		latitude REAL,
		longitude REAL,
		status TEXT NOT NULL,
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_complaints_login ON complaints(login_id);

	CREATE TABLE IF NOT EXISTS property_tax (
		id TEXT PRIMARY KEY,
		property_id TEXT NOT NULL UNIQUE,
		owner_name TEXT NOT NULL,
		address TEXT NOT NULL,
		amount REAL NOT NULL,
		status TEXT NOT NULL,
		year INTEGER NOT NULL,
		receipt_no TEXT,
		bill_no TEXT,
		created_at INTEGER NOT NULL
	);
	`
	if _, err := r.db.Exec(query); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}

// RegisterUser сохраняет пользователя и запись о сессии в одной транзакции
func (r *SQLiteRepository) RegisterUser(ctx context.Context, user *model.User, record *model.SessionRecord) error {
	user.GenerateID()
	record.GenerateID()
	now := time.Now()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = now
	}
	record.UserID = user.ID
	record.LoginID = user.LoginID

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			slog.Warn("failed to roll back registration", "error", rbErr)
		}
	}()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO users (id, login_id, name, mobile, area, ward_number, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		user.ID, user.LoginID, user.Name, user.Mobile, user.Area, user.Ward, user.CreatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO sessions (id, user_id, phone_number, state, login_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		record.ID, record.UserID, record.PhoneNumber, string(record.State), record.LoginID, record.CreatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to create session record: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit registration: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) GetUserByLoginID(ctx context.Context, loginID string) (*model.User, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, login_id, name, mobile, area, ward_number, created_at
		FROM users WHERE login_id = ?`, loginID)

	var user model.User
	var createdAt int64
	err := row.Scan(&user.ID, &user.LoginID, &user.Name, &user.Mobile, &user.Area, &user.Ward, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan user row: %w", err)
	}
	user.CreatedAt = time.Unix(createdAt, 0)
	return &user, nil
}

func (r *SQLiteRepository) CreateComplaint(ctx context.Context, complaint *model.Complaint) error {
	complaint.GenerateID()
	now := time.Now()
	complaint.CreatedAt = now
	complaint.UpdatedAt = now

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO complaints (id, complaint_id, user_id, login_id, category, sub_issue,
			description, image_url, latitude, longitude, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		complaint.ID, complaint.ComplaintID, complaint.UserID, complaint.LoginID,
		complaint.Category, complaint.SubIssue,
		nullString(complaint.Description), nullString(complaint.ImageURL),
		nullFloat(complaint.Latitude), nullFloat(complaint.Longitude),
		string(complaint.Status), now.Unix(), now.Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to create complaint: %w", err)
	}
	return nil
}

const complaintColumns = `c.id, c.complaint_id, c.user_id, c.login_id, c.category, c.sub_issue,
	c.description, c.image_url, c.latitude, c.longitude, c.status, c.created_at, c.updated_at`

func (r *SQLiteRepository) GetComplaintsByLoginID(ctx context.Context, loginID string) ([]model.Complaint, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+complaintColumns+`
		FROM complaints c WHERE c.login_id = ? ORDER BY c.created_at, c.id`, loginID)
	if err != nil {
		return nil, fmt.Errorf("failed to query complaints: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			slog.Warn("failed to close complaint rows", "error", closeErr)
		}
	}()

	var complaints []model.Complaint
	for rows.Next() {
		c, err := scanComplaint(rows)
		if err != nil {
			return nil, err
		}
		complaints = append(complaints, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate complaints: %w", err)
	}
	return complaints, nil
}

// GetComplaints возвращает жалобы вместе с данными заявителя, новые сначала
func (r *SQLiteRepository) GetComplaints(ctx context.Context, filter ComplaintFilter) ([]model.ComplaintView, error) {
	query := `
		SELECT ` + complaintColumns + `,
			COALESCE(u.name, ''), COALESCE(u.mobile, ''), COALESCE(u.area, ''), COALESCE(u.ward_number, '')
		FROM complaints c LEFT JOIN users u ON u.login_id = c.login_id
		WHERE 1 = 1`
	var args []interface{}
	if filter.LoginID != "" {
		query += ` AND c.login_id = ?`
		args = append(args, filter.LoginID)
	}
	if filter.Status != "" {
		query += ` AND c.status = ?`
		args = append(args, string(filter.Status))
	}
	query += ` ORDER BY c.created_at DESC, c.id DESC`
	if filter.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, filter.Limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query complaints: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			slog.Warn("failed to close complaint rows", "error", closeErr)
		}
	}()

	var views []model.ComplaintView
	for rows.Next() {
		var v model.ComplaintView
		c, err := scanComplaint(rows, &v.UserName, &v.UserMobile, &v.UserArea, &v.UserWard)
		if err != nil {
			return nil, err
		}
		v.Complaint = *c
		views = append(views, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate complaints: %w", err)
	}
	return views, nil
}

func (r *SQLiteRepository) UpdateComplaintStatus(ctx context.Context, complaintID string, status model.ComplaintStatus) (*model.Complaint, error) {
	result, err := r.db.ExecContext(ctx,
		`UPDATE complaints SET status = ?, updated_at = ? WHERE complaint_id = ?`,
		string(status), time.Now().Unix(), complaintID)
	if err != nil {
		return nil, fmt.Errorf("failed to update complaint status: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return nil, ErrNotFound
	}

	row := r.db.QueryRowContext(ctx, `SELECT `+complaintColumns+` FROM complaints c WHERE c.complaint_id = ?`, complaintID)
	return scanComplaint(row)
}

func (r *SQLiteRepository) CreateTaxRecord(ctx context.Context, record *model.PropertyTaxRecord) error {
	record.GenerateID()
	record.PropertyID = model.NormalizePropertyID(record.PropertyID)
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now()
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO property_tax (id, property_id, owner_name, address, amount, status, year,
			receipt_no, bill_no, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		record.ID, record.PropertyID, record.OwnerName, record.Address, record.Amount,
		string(record.Status), record.Year, nullString(record.ReceiptNo), nullString(record.BillNo),
		record.CreatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to create tax record: %w", err)
	}
	return nil
}

const taxColumns = `id, property_id, owner_name, address, amount, status, year, receipt_no, bill_no, created_at`

func (r *SQLiteRepository) GetTaxRecord(ctx context.Context, propertyID string) (*model.PropertyTaxRecord, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+taxColumns+` FROM property_tax WHERE property_id = ?`,
		model.NormalizePropertyID(propertyID))
	rec, err := scanTaxRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return rec, err
}

func (r *SQLiteRepository) GetTaxRecords(ctx context.Context) ([]model.PropertyTaxRecord, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+taxColumns+` FROM property_tax ORDER BY property_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query tax records: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			slog.Warn("failed to close tax rows", "error", closeErr)
		}
	}()

	var records []model.PropertyTaxRecord
	for rows.Next() {
		rec, err := scanTaxRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate tax records: %w", err)
	}
	return records, nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanComplaint(row scanner, extra ...interface{}) (*model.Complaint, error) {
	var c model.Complaint
	var description, imageURL sql.NullString
	var lat, long sql.NullFloat64
	var status string
	var createdAt, updatedAt int64

	dest := []interface{}{
		&c.ID, &c.ComplaintID, &c.UserID, &c.LoginID, &c.Category, &c.SubIssue,
		&description, &imageURL, &lat, &long, &status, &createdAt, &updatedAt,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan complaint row: %w", err)
	}

	c.Description = description.String
	c.ImageURL = imageURL.String
	if lat.Valid && long.Valid {
		c.SetLocation(&model.GeoPoint{Latitude: lat.Float64, Longitude: long.Float64})
	}
	c.Status = model.ComplaintStatus(status)
	c.CreatedAt = time.Unix(createdAt, 0)
	c.UpdatedAt = time.Unix(updatedAt, 0)
	return &c, nil
}

func scanTaxRecord(row scanner) (*model.PropertyTaxRecord, error) {
	var rec model.PropertyTaxRecord
	var receiptNo, billNo sql.NullString
	var status string
	var createdAt int64

	err := row.Scan(&rec.ID, &rec.PropertyID, &rec.OwnerName, &rec.Address, &rec.Amount,
		&status, &rec.Year, &receiptNo, &billNo, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan tax row: %w", err)
	}

	rec.Status = model.TaxStatus(status)
	rec.ReceiptNo = receiptNo.String
	rec.BillNo = billNo.String
	rec.CreatedAt = time.Unix(createdAt, 0)
	return &rec, nil
}

func nullString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

func nullFloat(f *float64) interface{} {
	if f == nil {
		return nil
	}
	return *f
}
