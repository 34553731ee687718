package validator

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/rotisserie/eris"

	"github.com/chatia/deploykit/internal/envfile"
)

const publicTablesQuery = `SELECT table_name
	FROM information_schema.tables
	WHERE table_schema = 'public'`

// TableLister returns the table names of the public schema.
type TableLister interface {
	ListTables(ctx context.Context, params envfile.DatabaseParams) ([]string, error)
}

type pgxTableLister struct{}

func (pgxTableLister) ListTables(ctx context.Context, params envfile.DatabaseParams) ([]string, error) {
	conn, err := pgx.Connect(ctx, params.URL())
	if err != nil {
		return nil, eris.Wrapf(err, "failed to connect to %s:%d/%s", params.Host, params.Port, params.Name)
	}
	defer conn.Close(context.Background())

	rows, err := conn.Query(ctx, publicTablesQuery)
	if err != nil {
		return nil, eris.Wrap(err, "failed to list tables")
	}
	tables, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, eris.Wrap(err, "failed to read table names")
	}
	return tables, nil
}
