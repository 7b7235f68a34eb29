package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"freightdesk_backend/internal/quotations/domain"
	"freightdesk_backend/platform/apperr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ── Domain Models ─────────────────────────────────────────────────────────────

// Quotation is the database model for a quotation. Rate collections, offers
// and the attribute bag are stored as JSONB; version backs the optimistic
// concurrency check that makes the read-modify-write cycle of an update
// effectively atomic per record.
type Quotation struct {
	ID                uuid.UUID         `db:"id"`
	ReferenceNumber   string            `db:"reference_number"`
	CustomerName      string            `db:"customer_name"`
	Origin            string            `db:"origin"`
	Destination       string            `db:"destination"`
	CargoDescription  string            `db:"cargo_description"`
	Status            string            `db:"status"`
	CloseReason       string            `db:"close_reason"`
	Attributes        map[string]any    `db:"attributes"`
	CarrierRates      []domain.RateItem `db:"carrier_rates"`
	ExtraServiceRates []domain.RateItem `db:"extra_service_rates"`
	CustomerRates     []domain.RateItem `db:"customer_rates"`
	Offers            []domain.Offer    `db:"offers"`
	EstimatedCost     float64           `db:"estimated_cost"`
	ProfitCurrency    string            `db:"profit_currency"`
	ProfitAmount      float64           `db:"profit_amount"`
	Version           int64             `db:"version"`
	CreatedAt         time.Time         `db:"created_at"`
	UpdatedAt         time.Time         `db:"updated_at"`
}

// ListParams contains parameters for listing quotations.
type ListParams struct {
	Status    *string
	Search    string
	SortBy    string
	SortOrder string
	Page      int
	PageSize  int
}

// ListResult contains the paginated result of listing quotations.
type ListResult struct {
	Items      []Quotation
	Total      int
	Page       int
	PageSize   int
	TotalPages int
}

// ── Repository ────────────────────────────────────────────────────────────────

const quotationNotFoundMsg = "quotation not found"

// Repository provides database operations for quotations.
type Repository struct {
	pool *pgxpool.Pool
}

// New creates a new quotations repository.
func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// NextReferenceNumber atomically generates the next quotation reference.
func (r *Repository) NextReferenceNumber(ctx context.Context) (string, error) {
	var nextNum int
	query := `
		INSERT INTO FD_quotation_counters (year, last_number)
		VALUES ($1, 1)
		ON CONFLICT (year) DO UPDATE SET last_number = FD_quotation_counters.last_number + 1
		RETURNING last_number`

	year := time.Now().Year()
	if err := r.pool.QueryRow(ctx, query, year).Scan(&nextNum); err != nil {
		return "", fmt.Errorf("failed to generate reference number: %w", err)
	}

	return fmt.Sprintf("FRT-%d-%04d", year, nextNum), nil
}

const quotationColumns = `
	id, reference_number, customer_name, origin, destination, cargo_description,
	status, close_reason, attributes,
	carrier_rates, extra_service_rates, customer_rates, offers,
	estimated_cost, profit_currency, profit_amount,
	version, created_at, updated_at`

// Create inserts a new quotation at version 1.
func (r *Repository) Create(ctx context.Context, q *Quotation) error {
	attributes, carrier, extra, customer, offers, err := encodeCollections(q)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO FD_quotations (` + quotationColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)`

	if _, err := r.pool.Exec(ctx, query,
		q.ID, q.ReferenceNumber, q.CustomerName, q.Origin, q.Destination, q.CargoDescription,
		q.Status, q.CloseReason, attributes,
		carrier, extra, customer, offers,
		q.EstimatedCost, q.ProfitCurrency, q.ProfitAmount,
		q.Version, q.CreatedAt, q.UpdatedAt,
	); err != nil {
		return fmt.Errorf("failed to insert quotation: %w", err)
	}
	return nil
}

// GetByID retrieves a quotation by its ID.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*Quotation, error) {
	query := `SELECT ` + quotationColumns + ` FROM FD_quotations WHERE id = $1`
	row := r.pool.QueryRow(ctx, query, id)

	q, err := scanQuotation(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound(quotationNotFoundMsg)
		}
		return nil, fmt.Errorf("failed to get quotation: %w", err)
	}
	return q, nil
}

// Save writes the next snapshot of a quotation, guarded by an optimistic
// version check. A stale expectedVersion yields apperr.Conflict — a retryable
// persistence conflict, distinct from any business-rule rejection.
func (r *Repository) Save(ctx context.Context, q *Quotation, expectedVersion int64) error {
	attributes, carrier, extra, customer, offers, err := encodeCollections(q)
	if err != nil {
		return err
	}

	query := `
		UPDATE FD_quotations SET
			customer_name = $3, origin = $4, destination = $5, cargo_description = $6,
			status = $7, close_reason = $8, attributes = $9,
			carrier_rates = $10, extra_service_rates = $11, customer_rates = $12, offers = $13,
			estimated_cost = $14, profit_currency = $15, profit_amount = $16,
			version = version + 1, updated_at = $17
		WHERE id = $1 AND version = $2`

	result, err := r.pool.Exec(ctx, query,
		q.ID, expectedVersion,
		q.CustomerName, q.Origin, q.Destination, q.CargoDescription,
		q.Status, q.CloseReason, attributes,
		carrier, extra, customer, offers,
		q.EstimatedCost, q.ProfitCurrency, q.ProfitAmount,
		time.Now(),
	)
	if err != nil {
		return fmt.Errorf("failed to save quotation: %w", err)
	}
	if result.RowsAffected() == 0 {
		// Either the record vanished or another request won the write race.
		var exists bool
		if err := r.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM FD_quotations WHERE id = $1)`, q.ID).Scan(&exists); err != nil {
			return fmt.Errorf("failed to check quotation existence: %w", err)
		}
		if !exists {
			return apperr.NotFound(quotationNotFoundMsg)
		}
		return apperr.Conflict("quotation was modified concurrently, reload and retry")
	}
	return nil
}

// Delete removes a quotation.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM FD_quotations WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete quotation: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperr.NotFound(quotationNotFoundMsg)
	}
	return nil
}

// List retrieves quotations with filtering and pagination.
func (r *Repository) List(ctx context.Context, params ListParams) (*ListResult, error) {
	sortBy, err := resolveSortBy(params.SortBy)
	if err != nil {
		return nil, err
	}
	sortOrder, err := resolveSortOrder(params.SortOrder)
	if err != nil {
		return nil, err
	}

	var searchParam interface{}
	if params.Search != "" {
		searchParam = "%" + params.Search + "%"
	}

	var statusParam interface{}
	if params.Status != nil {
		statusParam = *params.Status
	}

	baseQuery := `
		FROM FD_quotations
		WHERE ($1::text IS NULL OR status = $1)
			AND ($2::text IS NULL OR reference_number ILIKE $2 OR customer_name ILIKE $2 OR cargo_description ILIKE $2)
	`
	args := []interface{}{statusParam, searchParam}

	var total int
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) "+baseQuery, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("failed to count quotations: %w", err)
	}

	totalPages := (total + params.PageSize - 1) / params.PageSize
	offset := (params.Page - 1) * params.PageSize

	selectQuery := `
		SELECT ` + quotationColumns + baseQuery + `
		ORDER BY
			CASE WHEN $3 = 'referenceNumber' AND $4 = 'asc' THEN reference_number END ASC,
			CASE WHEN $3 = 'referenceNumber' AND $4 = 'desc' THEN reference_number END DESC,
			CASE WHEN $3 = 'status' AND $4 = 'asc' THEN status END ASC,
			CASE WHEN $3 = 'status' AND $4 = 'desc' THEN status END DESC,
			CASE WHEN $3 = 'customerName' AND $4 = 'asc' THEN customer_name END ASC,
			CASE WHEN $3 = 'customerName' AND $4 = 'desc' THEN customer_name END DESC,
			CASE WHEN $3 = 'estimatedCost' AND $4 = 'asc' THEN estimated_cost END ASC,
			CASE WHEN $3 = 'estimatedCost' AND $4 = 'desc' THEN estimated_cost END DESC,
			CASE WHEN $3 = 'createdAt' AND $4 = 'asc' THEN created_at END ASC,
			CASE WHEN $3 = 'createdAt' AND $4 = 'desc' THEN created_at END DESC,
			CASE WHEN $3 = 'updatedAt' AND $4 = 'asc' THEN updated_at END ASC,
			CASE WHEN $3 = 'updatedAt' AND $4 = 'desc' THEN updated_at END DESC,
			created_at DESC
		LIMIT $5 OFFSET $6`

	args = append(args, sortBy, sortOrder, params.PageSize, offset)

	rows, err := r.pool.Query(ctx, selectQuery, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list quotations: %w", err)
	}
	defer rows.Close()

	var items []Quotation
	for rows.Next() {
		q, err := scanQuotation(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan quotation: %w", err)
		}
		items = append(items, *q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate quotations: %w", err)
	}

	return &ListResult{
		Items:      items,
		Total:      total,
		Page:       params.Page,
		PageSize:   params.PageSize,
		TotalPages: totalPages,
	}, nil
}

// rowScanner is satisfied by both pgx.Row and pgx.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanQuotation(row rowScanner) (*Quotation, error) {
	var q Quotation
	var attributes, carrier, extra, customer, offers []byte

	if err := row.Scan(
		&q.ID, &q.ReferenceNumber, &q.CustomerName, &q.Origin, &q.Destination, &q.CargoDescription,
		&q.Status, &q.CloseReason, &attributes,
		&carrier, &extra, &customer, &offers,
		&q.EstimatedCost, &q.ProfitCurrency, &q.ProfitAmount,
		&q.Version, &q.CreatedAt, &q.UpdatedAt,
	); err != nil {
		return nil, err
	}

	if err := decodeJSONB(attributes, &q.Attributes); err != nil {
		return nil, fmt.Errorf("failed to decode attributes: %w", err)
	}
	if err := decodeJSONB(carrier, &q.CarrierRates); err != nil {
		return nil, fmt.Errorf("failed to decode carrier rates: %w", err)
	}
	if err := decodeJSONB(extra, &q.ExtraServiceRates); err != nil {
		return nil, fmt.Errorf("failed to decode extra-service rates: %w", err)
	}
	if err := decodeJSONB(customer, &q.CustomerRates); err != nil {
		return nil, fmt.Errorf("failed to decode customer rates: %w", err)
	}
	if err := decodeJSONB(offers, &q.Offers); err != nil {
		return nil, fmt.Errorf("failed to decode offers: %w", err)
	}
	return &q, nil
}

func decodeJSONB(data []byte, dest any) error {
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, dest)
}

func encodeCollections(q *Quotation) (attributes, carrier, extra, customer, offers []byte, err error) {
	if attributes, err = json.Marshal(q.Attributes); err != nil {
		return nil, nil, nil, nil, nil, fmt.Errorf("failed to encode attributes: %w", err)
	}
	if carrier, err = json.Marshal(q.CarrierRates); err != nil {
		return nil, nil, nil, nil, nil, fmt.Errorf("failed to encode carrier rates: %w", err)
	}
	if extra, err = json.Marshal(q.ExtraServiceRates); err != nil {
		return nil, nil, nil, nil, nil, fmt.Errorf("failed to encode extra-service rates: %w", err)
	}
	if customer, err = json.Marshal(q.CustomerRates); err != nil {
		return nil, nil, nil, nil, nil, fmt.Errorf("failed to encode customer rates: %w", err)
	}
	if offers, err = json.Marshal(q.Offers); err != nil {
		return nil, nil, nil, nil, nil, fmt.Errorf("failed to encode offers: %w", err)
	}
	return attributes, carrier, extra, customer, offers, nil
}

func resolveSortBy(sortBy string) (string, error) {
	if sortBy == "" {
		return "createdAt", nil
	}
	switch sortBy {
	case "referenceNumber", "status", "customerName", "estimatedCost", "createdAt", "updatedAt":
		return sortBy, nil
	default:
		return "", apperr.BadRequest("invalid sort field")
	}
}

func resolveSortOrder(sortOrder string) (string, error) {
	if sortOrder == "" {
		return "desc", nil
	}
	switch sortOrder {
	case "asc", "desc":
		return sortOrder, nil
	default:
		return "", apperr.BadRequest("invalid sort order")
	}
}
