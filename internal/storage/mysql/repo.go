package mysql

import (
	"context"
	"database/sql"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"hotelfuse/internal/domain"
)

func valStr(p *string) any {
	if p == nil {
		return nil
	}
	return *p
}
func valInt(p *int) any {
	if p == nil {
		return nil
	}
	return *p
}
func valF64(p *float64) any {
	if p == nil {
		return nil
	}
	return *p
}
func valTime(p *time.Time) any {
	if p == nil {
		return nil
	}
	return *p
}

type Repo struct{ db *sql.DB }

func New(db *sql.DB) *Repo { return &Repo{db: db} }

func (r *Repo) UpsertProperty(ctx context.Context, p domain.Property) error {
	_, err := r.db.ExecContext(ctx, upsertPropertySQL,
		p.ID,
		p.Name,
		valStr(p.Address),
		valStr(p.City),
		valStr(p.Country),
		valF64(p.Lat),
		valF64(p.Lon),
		valF64(p.Stars),
		valF64(p.ReviewScore),
		valInt(p.ReviewCount),
		valStr(p.ChainCode),
		valStr(p.CrossRefID),
		valStr(p.ThumbnailURL),
	)
	return err
}

func (r *Repo) UpsertLink(ctx context.Context, l domain.SupplierLink) error {
	_, err := r.db.ExecContext(ctx, upsertLinkSQL,
		l.SupplierCode, l.SupplierHotelID, l.PropertyID, l.Confidence, string(l.Method),
	)
	return err
}

func (r *Repo) AppendAudit(ctx context.Context, a domain.DedupAudit) error {
	_, err := r.db.ExecContext(ctx, insertAuditSQL,
		a.PropertyID, a.SupplierCode, a.SupplierHotelID,
		string(a.Method), a.Confidence, a.CandidateName, a.CreatedAt.UTC(),
	)
	return err
}

func (r *Repo) InsertOffers(ctx context.Context, propertyID, supplierCode string, offers []domain.RoomOfferCandidate) (int, error) {
	if len(offers) == 0 {
		return 0, nil
	}
	values := make([]string, 0, len(offers))
	args := make([]any, 0, len(offers)*21)
	for _, o := range offers {
		values = append(values, "(?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)")
		args = append(args,
			uuid.NewString(),
			propertyID,
			supplierCode,
			o.RoomName,
			string(o.Board),
			o.Refundable,
			o.FreeCancellation,
			valTime(o.CancellableUntil),
			o.Adults,
			o.Children,
			o.Currency,
			o.PriceBase,
			o.PriceTaxes,
			o.PriceTotal,
			valF64(o.PricePerNight),
			valStr(o.RateToken),
			valInt(o.Availability),
			o.CheckIn.UTC(),
			o.CheckOut.UTC(),
			o.CreatedAt.UTC(),
			valTime(o.ExpiresAt),
		)
	}
	res, err := r.db.ExecContext(ctx, insertOffersPrefix+strings.Join(values, ","), args...)
	if err != nil {
		return 0, err
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}

func (r *Repo) FindPropertyByCrossRef(ctx context.Context, crossRef string) (*domain.Property, error) {
	row := r.db.QueryRowContext(ctx, findPropertyByCrossRefSQL, crossRef)
	p, err := scanProperty(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *Repo) FindLink(ctx context.Context, supplierCode, supplierHotelID string) (*domain.SupplierLink, error) {
	var l domain.SupplierLink
	var method string
	err := r.db.QueryRowContext(ctx, findLinkSQL, supplierCode, supplierHotelID).Scan(
		&l.PropertyID, &l.SupplierCode, &l.SupplierHotelID, &l.Confidence, &method,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	l.Method = domain.MatchMethod(method)
	return &l, nil
}

func (r *Repo) ListPropertiesNear(ctx context.Context, city, country string, lat, lon, radiusM float64) ([]domain.PropertyNeighbor, error) {
	// One degree of latitude is ~111 km; longitude shrinks with cos(lat).
	dLat := radiusM / 111_000
	dLon := radiusM / (111_000 * math.Max(math.Cos(lat*math.Pi/180), 0.01))
	rows, err := r.db.QueryContext(ctx, listPropertiesNearSQL,
		lat-dLat, lat+dLat, lon-dLon, lon+dLon,
		city, city, country, country,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.PropertyNeighbor
	for rows.Next() {
		var n domain.PropertyNeighbor
		if err := scanPropertyInto(rows, &n.Property, &n.LinkCount); err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

func (r *Repo) CountLinks(ctx context.Context, propertyID string) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, countLinksSQL, propertyID).Scan(&n)
	return n, err
}

func (r *Repo) ListOffers(ctx context.Context, q domain.OfferQuery) ([]domain.OfferRow, error) {
	rows, err := r.db.QueryContext(ctx, listOffersSQL,
		q.Destination,
		q.Country, q.Country,
		q.CheckIn.UTC(), q.CheckOut.UTC(),
		q.Adults, q.Children,
		strings.ToUpper(q.Currency),
		q.At.UTC(),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.OfferRow
	for rows.Next() {
		var (
			row              domain.OfferRow
			board            string
			cancellableUntil sql.NullTime
			perNight         sql.NullFloat64
			rateToken        sql.NullString
			availability     sql.NullInt64
			expiresAt        sql.NullTime
			addr, city       sql.NullString
			country, chain   sql.NullString
			crossRef, thumb  sql.NullString
			lat, lon         sql.NullFloat64
			stars, review    sql.NullFloat64
			reviewCount      sql.NullInt64
		)
		o := &row.Offer
		p := &row.Property
		if err := rows.Scan(
			&o.ID, &o.PropertyID, &o.SupplierCode, &o.RoomName, &board, &o.Refundable,
			&o.FreeCancellation, &cancellableUntil, &o.Adults, &o.Children, &o.Currency,
			&o.PriceBase, &o.PriceTaxes, &o.PriceTotal, &perNight, &rateToken,
			&availability, &o.CheckIn, &o.CheckOut, &o.CreatedAt, &expiresAt,
			&p.ID, &p.Name, &addr, &city, &country, &lat, &lon, &stars,
			&review, &reviewCount, &chain, &crossRef, &thumb,
		); err != nil {
			return nil, err
		}
		o.Board = domain.BoardBasis(board)
		if cancellableUntil.Valid {
			t := cancellableUntil.Time
			o.CancellableUntil = &t
		}
		if perNight.Valid {
			f := perNight.Float64
			o.PricePerNight = &f
		}
		if rateToken.Valid {
			s := rateToken.String
			o.RateToken = &s
		}
		if availability.Valid {
			a := int(availability.Int64)
			o.Availability = &a
		}
		if expiresAt.Valid {
			t := expiresAt.Time
			o.ExpiresAt = &t
		}
		assignStr(&p.Address, addr)
		assignStr(&p.City, city)
		assignStr(&p.Country, country)
		assignF64(&p.Lat, lat)
		assignF64(&p.Lon, lon)
		assignF64(&p.Stars, stars)
		assignF64(&p.ReviewScore, review)
		if reviewCount.Valid {
			n := int(reviewCount.Int64)
			p.ReviewCount = &n
		}
		assignStr(&p.ChainCode, chain)
		assignStr(&p.CrossRefID, crossRef)
		assignStr(&p.ThumbnailURL, thumb)
		out = append(out, row)
	}
	return out, rows.Err()
}

func (r *Repo) SupplierSpread(ctx context.Context, propertyID string, at time.Time) ([]domain.SupplierSpread, error) {
	rows, err := r.db.QueryContext(ctx, supplierSpreadSQL, propertyID, at.UTC())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.SupplierSpread
	for rows.Next() {
		var s domain.SupplierSpread
		if err := rows.Scan(&s.SupplierCode, &s.Rooms, &s.MinTotal, &s.MaxTotal,
			&s.AvgTotal, &s.Currency, &s.FreeCancellation); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *Repo) ListSuppliers(ctx context.Context) ([]domain.Supplier, error) {
	rows, err := r.db.QueryContext(ctx, listSuppliersSQL)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Supplier
	for rows.Next() {
		var s domain.Supplier
		var timeoutMs int64
		if err := rows.Scan(&s.Code, &s.Enabled, &s.Weight, &timeoutMs); err != nil {
			return nil, err
		}
		s.Timeout = time.Duration(timeoutMs) * time.Millisecond
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *Repo) DeleteExpiredOffers(ctx context.Context, before time.Time, limit int) (int64, error) {
	if limit <= 0 {
		limit = 1000
	}
	res, err := r.db.ExecContext(ctx, deleteExpiredOffersSQL, before.UTC(), limit)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

type rowScanner interface{ Scan(dest ...any) error }

func scanProperty(row rowScanner) (*domain.Property, error) {
	var p domain.Property
	if err := scanPropertyInto(row, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func scanPropertyInto(row rowScanner, p *domain.Property, extra ...any) error {
	var (
		addr, city, country     sql.NullString
		chain, crossRef, thumb  sql.NullString
		lat, lon, stars, review sql.NullFloat64
		reviewCount             sql.NullInt64
	)
	dest := []any{
		&p.ID, &p.Name, &addr, &city, &country, &lat, &lon, &stars,
		&review, &reviewCount, &chain, &crossRef, &thumb,
	}
	dest = append(dest, extra...)
	if err := row.Scan(dest...); err != nil {
		return err
	}
	assignStr(&p.Address, addr)
	assignStr(&p.City, city)
	assignStr(&p.Country, country)
	assignF64(&p.Lat, lat)
	assignF64(&p.Lon, lon)
	assignF64(&p.Stars, stars)
	assignF64(&p.ReviewScore, review)
	if reviewCount.Valid {
		n := int(reviewCount.Int64)
		p.ReviewCount = &n
	}
	assignStr(&p.ChainCode, chain)
	assignStr(&p.CrossRefID, crossRef)
	assignStr(&p.ThumbnailURL, thumb)
	return nil
}

func assignStr(dst **string, v sql.NullString) {
	if v.Valid {
		s := v.String
		*dst = &s
	}
}

func assignF64(dst **float64, v sql.NullFloat64) {
	if v.Valid {
		f := v.Float64
		*dst = &f
	}
}
