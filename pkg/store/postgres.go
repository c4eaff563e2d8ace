package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/xhad/chamber/internal/models"
)

type PostgresConfig struct {
	ConnString string
	TableName  string
}

// PostgresSink upserts legislator records keyed by chamber id.
type PostgresSink struct {
	config PostgresConfig
	pool   *pgxpool.Pool
}

func NewPostgresSink(ctx context.Context, config PostgresConfig) (*PostgresSink, error) {
	if config.TableName == "" {
		config.TableName = "legislators"
	}

	pool, err := pgxpool.New(ctx, config.ConnString)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	ps := &PostgresSink{
		config: config,
		pool:   pool,
	}

	if err := ps.initialize(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return ps, nil
}

func (ps *PostgresSink) initialize(ctx context.Context) error {
	createTable := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			chamber_id INTEGER PRIMARY KEY,
			political_name TEXT NOT NULL,
			full_name TEXT NOT NULL,
			profession TEXT,
			party_code TEXT,
			state_code TEXT,
			took_seat_as TEXT,
			phone_number TEXT,
			fax_number TEXT,
			legislatures JSONB,
			subscription_number TEXT,
			email_address TEXT,
			mailing_address TEXT NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`, ps.config.TableName)

	if _, err := ps.pool.Exec(ctx, createTable); err != nil {
		return fmt.Errorf("failed to create table: %w", err)
	}
	return nil
}

// Save upserts a batch of records in one transaction.
func (ps *PostgresSink) Save(ctx context.Context, records []*models.LegislatorRecord) error {
	tx, err := ps.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	stmt := fmt.Sprintf(`
		INSERT INTO %s (chamber_id, political_name, full_name, profession, party_code,
			state_code, took_seat_as, phone_number, fax_number, legislatures,
			subscription_number, email_address, mailing_address, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, now())
		ON CONFLICT (chamber_id) DO UPDATE SET
			political_name = EXCLUDED.political_name,
			full_name = EXCLUDED.full_name,
			profession = EXCLUDED.profession,
			party_code = EXCLUDED.party_code,
			state_code = EXCLUDED.state_code,
			took_seat_as = EXCLUDED.took_seat_as,
			phone_number = EXCLUDED.phone_number,
			fax_number = EXCLUDED.fax_number,
			legislatures = EXCLUDED.legislatures,
			subscription_number = EXCLUDED.subscription_number,
			email_address = EXCLUDED.email_address,
			mailing_address = EXCLUDED.mailing_address,
			updated_at = now()`,
		ps.config.TableName)

	for _, r := range records {
		var legislatures []byte
		if r.Legislatures != nil {
			legislatures, err = json.Marshal(r.Legislatures)
			if err != nil {
				return fmt.Errorf("failed to encode legislatures of %d: %w", r.ChamberID, err)
			}
		}

		_, err = tx.Exec(ctx, stmt,
			r.ChamberID,
			r.PoliticalName,
			r.FullName,
			r.Profession,
			r.PartyCode,
			r.StateCode,
			r.TookSeatAs,
			r.PhoneNumber,
			r.FaxNumber,
			legislatures,
			r.SubscriptionNumber,
			r.EmailAddress,
			r.MailingAddress,
		)
		if err != nil {
			return fmt.Errorf("failed to upsert legislator %d: %w", r.ChamberID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// Get loads one record back by chamber id.
func (ps *PostgresSink) Get(ctx context.Context, chamberID int) (*models.LegislatorRecord, error) {
	query := fmt.Sprintf(`
		SELECT chamber_id, political_name, full_name, profession, party_code,
			state_code, took_seat_as, phone_number, fax_number, legislatures,
			subscription_number, email_address, mailing_address
		FROM %s
		WHERE chamber_id = $1`,
		ps.config.TableName)

	var (
		r            models.LegislatorRecord
		legislatures []byte
	)
	err := ps.pool.QueryRow(ctx, query, chamberID).Scan(
		&r.ChamberID,
		&r.PoliticalName,
		&r.FullName,
		&r.Profession,
		&r.PartyCode,
		&r.StateCode,
		&r.TookSeatAs,
		&r.PhoneNumber,
		&r.FaxNumber,
		&legislatures,
		&r.SubscriptionNumber,
		&r.EmailAddress,
		&r.MailingAddress,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load legislator %d: %w", chamberID, err)
	}

	if legislatures != nil {
		if err := json.Unmarshal(legislatures, &r.Legislatures); err != nil {
			return nil, fmt.Errorf("failed to decode legislatures of %d: %w", chamberID, err)
		}
	}
	return &r, nil
}

func (ps *PostgresSink) Close() {
	if ps.pool != nil {
		ps.pool.Close()
	}
}
