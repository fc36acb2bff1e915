package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	LocaleEnglish    = "en"
	LocaleVietnamese = "vi"

	// CurrencyVND is the unit of Bouquet.Price.
	CurrencyVND = "VND"
)

// Bouquet is a shop catalog row with both translations.
type Bouquet struct {
	ID            uuid.UUID `json:"id"`
	NameEN        string    `json:"name_en"`
	NameVI        string    `json:"name_vi"`
	DescriptionEN string    `json:"description_en"`
	DescriptionVI string    `json:"description_vi"`
	MeaningEN     string    `json:"meaning_en"`
	MeaningVI     string    `json:"meaning_vi"`
	Price         int64     `json:"price"`
	ImageURL      string    `json:"image_url"`
	CreatedAt     time.Time `json:"created_at"`
}

type LocalizedBouquet struct {
	ID          string `json:"id"`
	Locale      string `json:"locale"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Meaning     string `json:"meaning"`
	Price       int64  `json:"price"`
	Currency    string `json:"currency"`
	ImageURL    string `json:"image_url"`
}

// Localize picks the Vietnamese fields for "vi" and English otherwise.
func (b Bouquet) Localize(locale string) LocalizedBouquet {
	out := LocalizedBouquet{
		ID:          b.ID.String(),
		Locale:      LocaleEnglish,
		Name:        b.NameEN,
		Description: b.DescriptionEN,
		Meaning:     b.MeaningEN,
		Price:       b.Price,
		Currency:    CurrencyVND,
		ImageURL:    b.ImageURL,
	}
	if locale == LocaleVietnamese {
		out.Locale = LocaleVietnamese
		out.Name = b.NameVI
		out.Description = b.DescriptionVI
		out.Meaning = b.MeaningVI
	}
	return out
}

type Bouquets struct {
	pool *pgxpool.Pool
}

func NewBouquets(pool *pgxpool.Pool) *Bouquets {
	return &Bouquets{pool: pool}
}

// Insert writes items in one transaction and fills in their creation times.
func (s *Bouquets) Insert(ctx context.Context, items []Bouquet) ([]Bouquet, error) {
	inserted := make([]Bouquet, 0, len(items))
	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		for _, item := range items {
			if item.ID == uuid.Nil {
				item.ID = uuid.New()
			}
			if err := tx.QueryRow(
				ctx,
				`INSERT INTO bouquets (
				   id, name_en, name_vi, description_en, description_vi,
				   meaning_en, meaning_vi, price, image_url, created_at
				 ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW())
				 RETURNING created_at`,
				item.ID,
				item.NameEN,
				item.NameVI,
				item.DescriptionEN,
				item.DescriptionVI,
				item.MeaningEN,
				item.MeaningVI,
				item.Price,
				item.ImageURL,
			).Scan(&item.CreatedAt); err != nil {
				return fmt.Errorf("insert bouquet %q: %w", item.NameEN, err)
			}
			inserted = append(inserted, item)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return inserted, nil
}

// Seed inserts a fresh copy of the seed bouquets.
func (s *Bouquets) Seed(ctx context.Context) ([]Bouquet, error) {
	return s.Insert(ctx, SeedBouquets())
}

func (s *Bouquets) List(ctx context.Context) ([]Bouquet, error) {
	rows, err := s.pool.Query(
		ctx,
		`SELECT id, name_en, name_vi, description_en, description_vi,
		        meaning_en, meaning_vi, price, image_url, created_at
		 FROM bouquets
		 ORDER BY created_at ASC, name_en ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("list bouquets: %w", err)
	}
	defer rows.Close()

	items := make([]Bouquet, 0)
	for rows.Next() {
		var item Bouquet
		if err := rows.Scan(
			&item.ID,
			&item.NameEN,
			&item.NameVI,
			&item.DescriptionEN,
			&item.DescriptionVI,
			&item.MeaningEN,
			&item.MeaningVI,
			&item.Price,
			&item.ImageURL,
			&item.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan bouquet: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list bouquets: %w", err)
	}
	return items, nil
}
