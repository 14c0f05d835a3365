package repository

import "github.com/jmoiron/sqlx"

// rebind converts ? placeholders to the bindvar style of whatever handle
// runs the query, so helpers can accept either a *sqlx.DB or a *sqlx.Tx.
func rebind(q sqlx.QueryerContext, query string) string {
	if r, ok := q.(interface{ Rebind(string) string }); ok {
		return r.Rebind(query)
	}
	return query
}
