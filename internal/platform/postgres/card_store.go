package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/cardboardgarden/garden-api/internal/domain"
	"github.com/cardboardgarden/garden-api/internal/platform/logger"
	"github.com/cardboardgarden/garden-api/internal/store"
)

const cardColumns = `
	id, name, mana_cost, type_line, oracle_text, flavor_text,
	power, toughness, loyalty, set_code, set_name, collector_number,
	rarity, artist, image_uri_normal, released_at`

// PostgresCardStore implements store.CardStore on the cards table.
type PostgresCardStore struct {
	db     store.DBTX
	logger *slog.Logger
}

var _ store.CardStore = (*PostgresCardStore)(nil)

// NewPostgresCardStore creates a card store. If logger is nil, slog.Default() is used.
func NewPostgresCardStore(db store.DBTX, logger *slog.Logger) *PostgresCardStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresCardStore{
		db:     db,
		logger: logger.With(slog.String("component", "card_store")),
	}
}

// Search implements store.CardStore. Results are ordered by collector
// number when filtering by set, and by name otherwise.
func (s *PostgresCardStore) Search(
	ctx context.Context,
	filter domain.CardFilter,
	page domain.PageRequest,
) (domain.CardPage, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	where, args := buildCardWhere(filter)

	var total int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM cards`+where, args...).Scan(&total); err != nil {
		log.Error("failed to count cards", slog.String("error", err.Error()))
		return domain.CardPage{}, MapError(err)
	}

	result := domain.CardPage{Cards: []domain.Card{}, Total: total, Page: page}
	if total == 0 || int64(page.Page*page.Size) >= total {
		return result, nil
	}

	orderBy := ` ORDER BY name, id`
	if filter.SetCode != "" {
		orderBy = ` ORDER BY collector_number, id`
	}
	query := fmt.Sprintf(`SELECT %s FROM cards%s%s LIMIT $%d OFFSET $%d`,
		cardColumns, where, orderBy, len(args)+1, len(args)+2)
	args = append(args, page.Size, page.Page*page.Size)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to search cards", slog.String("error", err.Error()))
		return domain.CardPage{}, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		card, err := scanCard(rows)
		if err != nil {
			return domain.CardPage{}, MapError(err)
		}
		result.Cards = append(result.Cards, *card)
	}
	if err := rows.Err(); err != nil {
		return domain.CardPage{}, MapError(err)
	}

	log.Debug("card search completed",
		slog.Int64("total", total),
		slog.Int("returned", len(result.Cards)))
	return result, nil
}

// GetByID implements store.CardStore.
func (s *PostgresCardStore) GetByID(ctx context.Context, id int64) (*domain.Card, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+cardColumns+` FROM cards WHERE id = $1`, id)
	card, err := scanCard(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrCardNotFound
		}
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to load card",
			slog.Int64("card_id", id),
			slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	return card, nil
}

func buildCardWhere(filter domain.CardFilter) (string, []any) {
	var (
		clauses []string
		args    []any
	)
	if name := strings.TrimSpace(filter.Name); name != "" {
		args = append(args, "%"+escapeLike(strings.ToLower(name))+"%")
		clauses = append(clauses, fmt.Sprintf(`LOWER(name) LIKE $%d`, len(args)))
	}
	if filter.SetCode != "" {
		args = append(args, strings.ToLower(filter.SetCode))
		clauses = append(clauses, fmt.Sprintf(`LOWER(set_code) = $%d`, len(args)))
	}
	if filter.Rarity != "" {
		args = append(args, strings.ToLower(filter.Rarity))
		clauses = append(clauses, fmt.Sprintf(`LOWER(rarity) = $%d`, len(args)))
	}
	if len(clauses) == 0 {
		return "", nil
	}
	return ` WHERE ` + strings.Join(clauses, " AND "), args
}

// escapeLike neutralizes LIKE wildcards in user input.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCard(row rowScanner) (*domain.Card, error) {
	var (
		c                                           domain.Card
		manaCost, typeLine, oracleText, flavorText  sql.NullString
		power, toughness, loyalty, setName, collNum sql.NullString
		rarity, artist, imageURI                    sql.NullString
		releasedAt                                  sql.NullTime
	)
	err := row.Scan(
		&c.ID, &c.Name, &manaCost, &typeLine, &oracleText, &flavorText,
		&power, &toughness, &loyalty, &c.SetCode, &setName, &collNum,
		&rarity, &artist, &imageURI, &releasedAt,
	)
	if err != nil {
		return nil, err
	}
	c.ManaCost = manaCost.String
	c.TypeLine = typeLine.String
	c.OracleText = oracleText.String
	c.FlavorText = flavorText.String
	c.Power = power.String
	c.Toughness = toughness.String
	c.Loyalty = loyalty.String
	c.SetName = setName.String
	c.CollectorNumber = collNum.String
	c.Rarity = rarity.String
	c.Artist = artist.String
	c.ImageURINormal = imageURI.String
	c.ReleasedAt = timePtr(releasedAt)
	return &c, nil
}
