package sqlite

import (
	"context"

	"github.com/huandu/go-sqlbuilder"
	"github.com/jmoiron/sqlx"
	"github.com/luno/jettison/errors"
	"github.com/luno/jettison/j"

	"github.com/stefanfredik/openaccess-sub000/internal/domain"
)

// insertBatch keeps each statement well below SQLite's bound parameter limit
const insertBatch = 200

// ImportInventory replaces the tenant's inventory in a single transaction.
// Saved node positions are kept.
func (r *Repository) ImportInventory(ctx context.Context, tenantID int64, inv *domain.Inventory) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "failed to begin transaction")
	}
	defer tx.Rollback()

	if err := clearTenant(ctx, tx, tenantID); err != nil {
		return err
	}

	devices := make(map[domain.DeviceKind][][]any)
	for _, d := range inv.Devices {
		if _, ok := deviceTables[d.Kind]; !ok {
			return errors.Wrap(domain.ErrBadRequest, "unknown device type", j.KV("kind", d.Kind))
		}
		devices[d.Kind] = append(devices[d.Kind], []any{
			tenantID, d.ID, d.Name, stringToNull(d.Code), stringToNull(d.Status), boolPtrToNull(d.IsActive),
			stringToNull(d.IPAddress), stringToNull(d.Username), stringToNull(d.Password), stringToNull(d.SNMPCommunity),
		})
	}
	for _, kind := range domain.DeviceKinds() {
		err := insertRows(ctx, tx, deviceTables[kind], []string{
			"tenant_id", "id", "name", "code", "status", "is_active",
			"ip_address", "username", "password", "snmp_community",
		}, devices[kind])
		if err != nil {
			return err
		}
	}

	enclosures := make(map[domain.EnclosureKind][][]any)
	for _, e := range inv.Enclosures {
		if _, ok := enclosureTables[e.Kind]; !ok {
			return errors.Wrap(domain.ErrBadRequest, "unknown enclosure type", j.KV("kind", e.Kind))
		}
		enclosures[e.Kind] = append(enclosures[e.Kind], []any{tenantID, e.ID, e.Name, stringToNull(e.Code)})
	}
	for _, kind := range domain.EnclosureKinds() {
		if err := insertRows(ctx, tx, enclosureTables[kind], []string{"tenant_id", "id", "name", "code"}, enclosures[kind]); err != nil {
			return err
		}
	}

	var rows [][]any
	for _, p := range inv.Ports {
		rows = append(rows, []any{tenantID, p.ID, string(p.Device.Kind), p.Device.ID, p.Name})
	}
	if err := insertRows(ctx, tx, "device_ports", []string{"tenant_id", "id", "device_kind", "device_id", "name"}, rows); err != nil {
		return err
	}

	rows = rows[:0]
	for _, c := range inv.Connections {
		rows = append(rows, []any{
			tenantID, c.ID,
			string(c.Source.Kind), c.Source.ID, string(c.Destination.Kind), c.Destination.ID,
			stringToNull(string(c.Kind)), stringToNull(c.SourcePort), stringToNull(c.DestinationPort),
			int64PtrToNull(c.SourcePortID), int64PtrToNull(c.DestinationPortID), stringToNull(c.Metadata),
		})
	}
	if err := insertRows(ctx, tx, "connections", []string{
		"tenant_id", "id", "source_kind", "source_id", "destination_kind", "destination_id",
		"kind", "source_port", "destination_port", "source_port_id", "destination_port_id", "metadata",
	}, rows); err != nil {
		return err
	}

	rows = rows[:0]
	for _, c := range inv.Cables {
		rows = append(rows, []any{tenantID, c.ID, c.Name, c.CoreCount})
	}
	if err := insertRows(ctx, tx, "cables", []string{"tenant_id", "id", "name", "core_count"}, rows); err != nil {
		return err
	}

	rows = rows[:0]
	for _, t := range inv.Tubes {
		rows = append(rows, []any{tenantID, t.ID, t.CableID, t.Number, stringToNull(t.Color)})
	}
	if err := insertRows(ctx, tx, "tubes", []string{"tenant_id", "id", "cable_id", "number", "color"}, rows); err != nil {
		return err
	}

	rows = rows[:0]
	for _, c := range inv.Cores {
		status := c.Status
		if status == "" {
			status = domain.CoreAvailable
		}
		rows = append(rows, []any{tenantID, c.ID, c.CableID, int64PtrToNull(c.TubeID), c.Number, stringToNull(c.Color), string(status)})
	}
	if err := insertRows(ctx, tx, "cable_cores", []string{"tenant_id", "id", "cable_id", "tube_id", "number", "color", "status"}, rows); err != nil {
		return err
	}

	rows = rows[:0]
	for _, s := range inv.Splices {
		rows = append(rows, []any{
			tenantID, s.ID, s.IncomingCoreID, s.OutgoingCoreID,
			string(s.Enclosure.Kind), s.Enclosure.ID, s.LossDB,
		})
	}
	if err := insertRows(ctx, tx, "fiber_splices", []string{
		"tenant_id", "id", "incoming_core_id", "outgoing_core_id", "enclosure_kind", "enclosure_id", "loss_db",
	}, rows); err != nil {
		return err
	}

	rows = rows[:0]
	for _, t := range inv.Terminations {
		rows = append(rows, []any{tenantID, t.ID, t.CoreID, string(t.PortKind), t.PortID})
	}
	if err := insertRows(ctx, tx, "port_terminations", []string{"tenant_id", "id", "core_id", "port_kind", "port_id"}, rows); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, "failed to commit import")
	}
	return nil
}

func clearTenant(ctx context.Context, tx *sqlx.Tx, tenantID int64) error {
	tables := []string{"port_terminations", "fiber_splices", "cable_cores", "tubes", "cables", "connections", "device_ports"}
	for _, kind := range domain.EnclosureKinds() {
		tables = append(tables, enclosureTables[kind])
	}
	for _, kind := range domain.DeviceKinds() {
		tables = append(tables, deviceTables[kind])
	}

	for _, table := range tables {
		db := sqlbuilder.SQLite.NewDeleteBuilder()
		db.DeleteFrom(table)
		db.Where(db.Equal("tenant_id", tenantID))

		query, args := db.Build()
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return errors.Wrap(err, "failed to clear table", j.KV("table", table))
		}
	}
	return nil
}

func insertRows(ctx context.Context, tx *sqlx.Tx, table string, cols []string, rows [][]any) error {
	for start := 0; start < len(rows); start += insertBatch {
		end := min(start+insertBatch, len(rows))

		ib := sqlbuilder.SQLite.NewInsertBuilder()
		ib.InsertInto(table)
		ib.Cols(cols...)
		for _, row := range rows[start:end] {
			ib.Values(row...)
		}

		query, args := ib.Build()
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return errors.Wrap(err, "failed to insert rows", j.KV("table", table))
		}
	}
	return nil
}
