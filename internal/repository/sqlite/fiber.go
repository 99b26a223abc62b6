package sqlite

import (
	"context"
	"database/sql"

	"github.com/huandu/go-sqlbuilder"
	"github.com/jmoiron/sqlx"
	"github.com/luno/jettison/errors"
	"github.com/luno/jettison/j"

	"github.com/stefanfredik/openaccess-sub000/internal/domain"
	"github.com/stefanfredik/openaccess-sub000/internal/repository"
)

var coreColumns = []string{"id", "cable_id", "tube_id", "number", "color", "status"}

// GetCore retrieves a cable core by id
func (r *Repository) GetCore(ctx context.Context, tenantID, id int64) (*domain.CableCore, error) {
	return getCore(ctx, r.db, tenantID, id)
}

func getCore(ctx context.Context, q sqlx.QueryerContext, tenantID, id int64) (*domain.CableCore, error) {
	sb := sqlbuilder.SQLite.NewSelectBuilder()
	sb.Select(coreColumns...)
	sb.From("cable_cores")
	sb.Where(sb.Equal("tenant_id", tenantID), sb.Equal("id", id))

	query, args := sb.Build()
	var row coreRow
	if err := sqlx.GetContext(ctx, q, &row, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "failed to query core", j.KV("core_id", id))
	}

	c := row.toDomain()
	return &c, nil
}

func getEnclosure(ctx context.Context, q sqlx.QueryerContext, tenantID int64, ref domain.EnclosureRef) (*domain.Enclosure, error) {
	table, ok := enclosureTables[ref.Kind]
	if !ok {
		return nil, errors.Wrap(domain.ErrBadRequest, "unknown enclosure type", j.KV("kind", ref.Kind))
	}

	sb := sqlbuilder.SQLite.NewSelectBuilder()
	sb.Select("id", "name", "code")
	sb.From(table)
	sb.Where(sb.Equal("tenant_id", tenantID), sb.Equal("id", ref.ID))

	query, args := sb.Build()
	var row enclosureRow
	if err := sqlx.GetContext(ctx, q, &row, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "failed to query enclosure", j.KV("enclosure", ref.String()))
	}

	e := row.toDomain(ref.Kind)
	return &e, nil
}

// LoadFiberPlant returns every core, cable, splice and termination of the tenant
func (r *Repository) LoadFiberPlant(ctx context.Context, tenantID int64) (*repository.FiberPlant, error) {
	plant := &repository.FiberPlant{}

	var cores []coreRow
	if err := r.selectAll(ctx, &cores, "cable_cores", tenantID, coreColumns...); err != nil {
		return nil, err
	}
	for _, row := range cores {
		plant.Cores = append(plant.Cores, row.toDomain())
	}

	var cables []cableRow
	if err := r.selectAll(ctx, &cables, "cables", tenantID, "id", "name", "core_count"); err != nil {
		return nil, err
	}
	for _, row := range cables {
		plant.Cables = append(plant.Cables, row.toDomain())
	}

	var splices []spliceRow
	if err := r.selectAll(ctx, &splices, "fiber_splices", tenantID,
		"id", "incoming_core_id", "outgoing_core_id", "enclosure_kind", "enclosure_id", "loss_db"); err != nil {
		return nil, err
	}
	for _, row := range splices {
		plant.Splices = append(plant.Splices, row.toDomain())
	}

	var terms []terminationRow
	if err := r.selectAll(ctx, &terms, "port_terminations", tenantID, "id", "core_id", "port_kind", "port_id"); err != nil {
		return nil, err
	}
	for _, row := range terms {
		plant.Terminations = append(plant.Terminations, row.toDomain())
	}

	return plant, nil
}

func (r *Repository) selectAll(ctx context.Context, dest any, table string, tenantID int64, cols ...string) error {
	sb := sqlbuilder.SQLite.NewSelectBuilder()
	sb.Select(cols...)
	sb.From(table)
	sb.Where(sb.Equal("tenant_id", tenantID))
	sb.OrderBy("id")

	query, args := sb.Build()
	if err := r.db.SelectContext(ctx, dest, query, args...); err != nil {
		return errors.Wrap(err, "failed to query table", j.KV("table", table))
	}
	return nil
}

// CreateSplice stores a splice between two existing cores inside an existing
// enclosure. A core may be the incoming side of one splice and the outgoing
// side of one splice at most. Both cores are marked as used.
func (r *Repository) CreateSplice(ctx context.Context, tenantID int64, s *domain.FiberSplice) error {
	if s.IncomingCoreID == s.OutgoingCoreID {
		return errors.Wrap(domain.ErrBadRequest, "a core cannot be spliced to itself", j.KV("core_id", s.IncomingCoreID))
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "failed to begin transaction")
	}
	defer tx.Rollback()

	for _, id := range []int64{s.IncomingCoreID, s.OutgoingCoreID} {
		core, err := getCore(ctx, tx, tenantID, id)
		if err != nil {
			return err
		}
		if core == nil {
			return errors.Wrap(domain.ErrNotFound, "core not found", j.KV("core_id", id))
		}
	}

	enc, err := getEnclosure(ctx, tx, tenantID, s.Enclosure)
	if err != nil {
		return err
	}
	if enc == nil {
		return errors.Wrap(domain.ErrNotFound, "enclosure not found", j.KV("enclosure", s.Enclosure.String()))
	}

	sides := []struct {
		col string
		id  int64
	}{
		{"incoming_core_id", s.IncomingCoreID},
		{"outgoing_core_id", s.OutgoingCoreID},
	}
	for _, side := range sides {
		taken, err := spliceExists(ctx, tx, tenantID, side.col, side.id)
		if err != nil {
			return err
		}
		if taken {
			return errors.Wrap(domain.ErrConflict, "core already spliced",
				j.KV("core_id", side.id), j.KV("side", side.col))
		}
	}

	var next int64
	if err := tx.GetContext(ctx, &next, "SELECT COALESCE(MAX(id), 0) + 1 FROM fiber_splices WHERE tenant_id = ?", tenantID); err != nil {
		return errors.Wrap(err, "failed to allocate splice id")
	}
	s.ID = next

	ib := sqlbuilder.SQLite.NewInsertBuilder()
	ib.InsertInto("fiber_splices")
	ib.Cols("tenant_id", "id", "incoming_core_id", "outgoing_core_id", "enclosure_kind", "enclosure_id", "loss_db")
	ib.Values(tenantID, s.ID, s.IncomingCoreID, s.OutgoingCoreID, string(s.Enclosure.Kind), s.Enclosure.ID, s.LossDB)

	query, args := ib.Build()
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return errors.Wrap(err, "failed to insert splice")
	}

	ub := sqlbuilder.SQLite.NewUpdateBuilder()
	ub.Update("cable_cores")
	ub.Set(ub.Assign("status", string(domain.CoreUsed)))
	ub.Where(ub.Equal("tenant_id", tenantID), ub.In("id", s.IncomingCoreID, s.OutgoingCoreID))

	query, args = ub.Build()
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return errors.Wrap(err, "failed to mark cores used")
	}

	return tx.Commit()
}

func spliceExists(ctx context.Context, tx *sqlx.Tx, tenantID int64, col string, coreID int64) (bool, error) {
	sb := sqlbuilder.SQLite.NewSelectBuilder()
	sb.Select("COUNT(*)")
	sb.From("fiber_splices")
	sb.Where(sb.Equal("tenant_id", tenantID), sb.Equal(col, coreID))

	query, args := sb.Build()
	var n int
	if err := tx.GetContext(ctx, &n, query, args...); err != nil {
		return false, errors.Wrap(err, "failed to check splices", j.KV("core_id", coreID))
	}
	return n > 0, nil
}
