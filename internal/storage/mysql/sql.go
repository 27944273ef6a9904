package mysql

// Property upserts are strict fill-in: an existing non-NULL column always
// wins, so later suppliers enrich a record but never overwrite what an
// earlier one established. Only updated_at moves.
const upsertPropertySQL = `
INSERT INTO properties
  (id, name, address, city, country, lat, lon, stars, review_score,
   review_count, chain_code, cross_ref_id, thumbnail_url)
VALUES
  (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON DUPLICATE KEY UPDATE
  address       = COALESCE(properties.address, VALUES(address)),
  city          = COALESCE(properties.city, VALUES(city)),
  country       = COALESCE(properties.country, VALUES(country)),
  lat           = COALESCE(properties.lat, VALUES(lat)),
  lon           = COALESCE(properties.lon, VALUES(lon)),
  stars         = COALESCE(properties.stars, VALUES(stars)),
  review_score  = COALESCE(properties.review_score, VALUES(review_score)),
  review_count  = COALESCE(properties.review_count, VALUES(review_count)),
  chain_code    = COALESCE(properties.chain_code, VALUES(chain_code)),
  cross_ref_id  = COALESCE(properties.cross_ref_id, VALUES(cross_ref_id)),
  thumbnail_url = COALESCE(properties.thumbnail_url, VALUES(thumbnail_url)),
  updated_at    = CURRENT_TIMESTAMP
`

// Link upserts supersede: a re-resolved (supplier, hotel id) pair is
// repointed at the new property; the old row is replaced, never duplicated.
const upsertLinkSQL = `
INSERT INTO supplier_links
  (supplier_code, supplier_hotel_id, property_id, confidence, method)
VALUES
  (?, ?, ?, ?, ?)
ON DUPLICATE KEY UPDATE
  property_id = VALUES(property_id),
  confidence  = VALUES(confidence),
  method      = VALUES(method),
  updated_at  = CURRENT_TIMESTAMP
`

const insertAuditSQL = `
INSERT INTO dedup_audit
  (property_id, supplier_code, supplier_hotel_id, method, confidence, candidate_name, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?)
`

// Offers are append-only; 21 params per row.
const insertOffersPrefix = `
INSERT INTO room_offers
  (id, property_id, supplier_code, room_name, board, refundable,
   free_cancellation, cancellable_until, adults, children, currency,
   price_base, price_taxes, price_total, price_per_night, rate_token,
   availability, check_in, check_out, created_at, expires_at)
VALUES `

const findPropertyByCrossRefSQL = `
SELECT id, name, address, city, country, lat, lon, stars, review_score,
       review_count, chain_code, cross_ref_id, thumbnail_url
FROM properties
WHERE cross_ref_id = ?
`

const findLinkSQL = `
SELECT property_id, supplier_code, supplier_hotel_id, confidence, method
FROM supplier_links
WHERE supplier_code = ? AND supplier_hotel_id = ?
`

// Bounding-box prefilter; the caller applies the exact haversine cut. The
// city/country predicates are skipped when the candidate has none.
const listPropertiesNearSQL = `
SELECT p.id, p.name, p.address, p.city, p.country, p.lat, p.lon, p.stars,
       p.review_score, p.review_count, p.chain_code, p.cross_ref_id, p.thumbnail_url,
       (SELECT COUNT(*) FROM supplier_links l WHERE l.property_id = p.id) AS link_count
FROM properties p
WHERE p.lat BETWEEN ? AND ?
  AND p.lon BETWEEN ? AND ?
  AND (? = '' OR LOWER(p.city) = LOWER(?))
  AND (? = '' OR LOWER(p.country) = LOWER(?))
`

const countLinksSQL = `SELECT COUNT(*) FROM supplier_links WHERE property_id = ?`

// Live offers for ranking: exact search context, expiry checked in SQL so
// the ranker only ever sees committed, current rows.
const listOffersSQL = `
SELECT
  o.id, o.property_id, o.supplier_code, o.room_name, o.board, o.refundable,
  o.free_cancellation, o.cancellable_until, o.adults, o.children, o.currency,
  o.price_base, o.price_taxes, o.price_total, o.price_per_night, o.rate_token,
  o.availability, o.check_in, o.check_out, o.created_at, o.expires_at,
  p.id, p.name, p.address, p.city, p.country, p.lat, p.lon, p.stars,
  p.review_score, p.review_count, p.chain_code, p.cross_ref_id, p.thumbnail_url
FROM room_offers o
JOIN properties p ON p.id = o.property_id
WHERE LOWER(p.city) = LOWER(?)
  AND (? = '' OR LOWER(p.country) = LOWER(?))
  AND o.check_in = ?
  AND o.check_out = ?
  AND o.adults = ?
  AND o.children = ?
  AND o.currency = ?
  AND (o.expires_at IS NULL OR o.expires_at > ?)
`

const supplierSpreadSQL = `
SELECT
  supplier_code,
  COUNT(*)                                    AS rooms,
  MIN(price_total)                            AS min_total,
  MAX(price_total)                            AS max_total,
  AVG(price_total)                            AS avg_total,
  MIN(currency)                               AS currency,
  SUM(CASE WHEN free_cancellation THEN 1 ELSE 0 END) AS free_cancellation_rooms
FROM room_offers
WHERE property_id = ?
  AND (expires_at IS NULL OR expires_at > ?)
GROUP BY supplier_code
ORDER BY min_total ASC
`

const listSuppliersSQL = `
SELECT code, enabled, weight, timeout_ms FROM suppliers ORDER BY weight DESC, code
`

const deleteExpiredOffersSQL = `
DELETE FROM room_offers
WHERE expires_at IS NOT NULL AND expires_at <= ?
LIMIT ?
`
