package resource

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"fieldops.org/internal/auth"
)

// kindTables whitelists the table behind each kind tag; kinds never reach
// SQL as free text.
var kindTables = map[string]string{
	KindVehicle: "vehicles",
	KindTask:    "tasks",
	KindPayment: "payments",
}

// PGResources supplies PostgreSQL-backed fetchers for the assignable
// domain entities.
type PGResources struct {
	db *sql.DB
}

func NewPGResources(db *sql.DB) *PGResources {
	return &PGResources{db: db}
}

// RegisterAll wires a fetcher per known kind into the registry.
func (p *PGResources) RegisterAll(reg *Registry) error {
	for kind := range kindTables {
		if err := reg.Register(kind, p.fetcher(kind)); err != nil {
			return err
		}
	}
	return nil
}

func (p *PGResources) fetcher(kind string) Fetcher {
	table := kindTables[kind]
	query := fmt.Sprintf(
		`select id, coalesce(assigned_to, ''), status, created_at from %s where id=$1`, table)
	return func(ctx context.Context, id string) (Resource, error) {
		res := Resource{Kind: kind}
		err := p.db.QueryRowContext(ctx, query, id).
			Scan(&res.ID, &res.AssignedTo, &res.Status, &res.CreatedAt)
		if errors.Is(err, sql.ErrNoRows) {
			return Resource{}, auth.ErrResourceNotFound
		}
		if err != nil {
			return Resource{}, err
		}
		return res, nil
	}
}
