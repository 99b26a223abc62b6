package sqlite

import (
	"context"
	"database/sql"
	"strings"

	"github.com/huandu/go-sqlbuilder"
	"github.com/jmoiron/sqlx"
	"github.com/luno/jettison/errors"
	"github.com/luno/jettison/j"

	"github.com/stefanfredik/openaccess-sub000/internal/domain"
	"github.com/stefanfredik/openaccess-sub000/internal/repository"

	_ "modernc.org/sqlite"
)

var _ repository.Repository = (*Repository)(nil)

// Repository implements repository.Repository using SQLite
type Repository struct {
	db *sqlx.DB
}

// deviceTables maps each device kind to the table holding it
var deviceTables = map[domain.DeviceKind]string{
	domain.KindRouter:      "routers",
	domain.KindSwitch:      "switches",
	domain.KindOLT:         "olts",
	domain.KindONT:         "onts",
	domain.KindAccessPoint: "access_points",
	domain.KindCPE:         "cpes",
}

// enclosureTables maps each enclosure kind to the table holding it
var enclosureTables = map[domain.EnclosureKind]string{
	domain.EnclosureJointBox: "joint_boxes",
	domain.EnclosureODP:      "odps",
	domain.EnclosureODF:      "odfs",
}

// New creates a new SQLite repository
func New(dbPath string) (*Repository, error) {
	db, err := sqlx.Open("sqlite", dsn(dbPath))
	if err != nil {
		return nil, errors.Wrap(err, "failed to open database", j.KV("path", dbPath))
	}

	// A single connection keeps ":memory:" databases coherent and serialises writers
	db.SetMaxOpenConns(1)

	repo := &Repository{db: db}
	if err := repo.migrate(); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "failed to migrate database")
	}

	return repo, nil
}

func dsn(path string) string {
	pragmas := "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	if path == ":memory:" || strings.HasPrefix(path, "file::memory:") {
		return path + "?" + pragmas
	}
	return "file:" + path + "?" + pragmas + "&_pragma=journal_mode(WAL)"
}

func (r *Repository) migrate() error {
	var schema strings.Builder

	for _, kind := range domain.DeviceKinds() {
		schema.WriteString(`
	CREATE TABLE IF NOT EXISTS ` + deviceTables[kind] + ` (
		tenant_id INTEGER NOT NULL,
		id INTEGER NOT NULL,
		name TEXT NOT NULL,
		code TEXT,
		status TEXT,
		is_active INTEGER,
		ip_address TEXT,
		username TEXT,
		password TEXT,
		snmp_community TEXT,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (tenant_id, id)
	);
	`)
	}

	for _, kind := range domain.EnclosureKinds() {
		schema.WriteString(`
	CREATE TABLE IF NOT EXISTS ` + enclosureTables[kind] + ` (
		tenant_id INTEGER NOT NULL,
		id INTEGER NOT NULL,
		name TEXT NOT NULL,
		code TEXT,
		PRIMARY KEY (tenant_id, id)
	);
	`)
	}

	schema.WriteString(`
	CREATE TABLE IF NOT EXISTS device_ports (
		tenant_id INTEGER NOT NULL,
		id INTEGER NOT NULL,
		device_kind TEXT NOT NULL,
		device_id INTEGER NOT NULL,
		name TEXT NOT NULL,
		PRIMARY KEY (tenant_id, id)
	);

	CREATE TABLE IF NOT EXISTS connections (
		tenant_id INTEGER NOT NULL,
		id INTEGER NOT NULL,
		source_kind TEXT NOT NULL,
		source_id INTEGER NOT NULL,
		destination_kind TEXT NOT NULL,
		destination_id INTEGER NOT NULL,
		kind TEXT,
		source_port TEXT,
		destination_port TEXT,
		source_port_id INTEGER,
		destination_port_id INTEGER,
		metadata TEXT,
		PRIMARY KEY (tenant_id, id)
	);

	CREATE TABLE IF NOT EXISTS node_positions (
		tenant_id INTEGER NOT NULL,
		node_uid TEXT NOT NULL,
		x REAL NOT NULL,
		y REAL NOT NULL,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (tenant_id, node_uid)
	);

	CREATE TABLE IF NOT EXISTS cables (
		tenant_id INTEGER NOT NULL,
		id INTEGER NOT NULL,
		name TEXT NOT NULL,
		core_count INTEGER NOT NULL DEFAULT 0,
		PRIMARY KEY (tenant_id, id)
	);

	CREATE TABLE IF NOT EXISTS tubes (
		tenant_id INTEGER NOT NULL,
		id INTEGER NOT NULL,
		cable_id INTEGER NOT NULL,
		number INTEGER NOT NULL,
		color TEXT,
		PRIMARY KEY (tenant_id, id),
		FOREIGN KEY (tenant_id, cable_id) REFERENCES cables(tenant_id, id) ON DELETE CASCADE
	);

	CREATE TABLE IF NOT EXISTS cable_cores (
		tenant_id INTEGER NOT NULL,
		id INTEGER NOT NULL,
		cable_id INTEGER NOT NULL,
		tube_id INTEGER,
		number INTEGER NOT NULL,
		color TEXT,
		status TEXT NOT NULL DEFAULT 'available',
		PRIMARY KEY (tenant_id, id),
		FOREIGN KEY (tenant_id, cable_id) REFERENCES cables(tenant_id, id) ON DELETE CASCADE
	);

	CREATE TABLE IF NOT EXISTS fiber_splices (
		tenant_id INTEGER NOT NULL,
		id INTEGER NOT NULL,
		incoming_core_id INTEGER NOT NULL,
		outgoing_core_id INTEGER NOT NULL,
		enclosure_kind TEXT NOT NULL,
		enclosure_id INTEGER NOT NULL,
		loss_db REAL NOT NULL DEFAULT 0,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (tenant_id, id)
	);

	CREATE TABLE IF NOT EXISTS port_terminations (
		tenant_id INTEGER NOT NULL,
		id INTEGER NOT NULL,
		core_id INTEGER NOT NULL,
		port_kind TEXT NOT NULL,
		port_id INTEGER NOT NULL,
		PRIMARY KEY (tenant_id, id)
	);

	CREATE INDEX IF NOT EXISTS idx_connections_source ON connections(tenant_id, source_kind, source_id);
	CREATE INDEX IF NOT EXISTS idx_connections_destination ON connections(tenant_id, destination_kind, destination_id);
	CREATE INDEX IF NOT EXISTS idx_splices_incoming ON fiber_splices(tenant_id, incoming_core_id);
	CREATE INDEX IF NOT EXISTS idx_splices_outgoing ON fiber_splices(tenant_id, outgoing_core_id);
	CREATE INDEX IF NOT EXISTS idx_terminations_core ON port_terminations(tenant_id, core_id);
	`)

	_, err := r.db.Exec(schema.String())
	return err
}

// Ping checks the database connection
func (r *Repository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// Close closes the database connection
func (r *Repository) Close() error {
	return r.db.Close()
}

// ============================================================================
// Devices
// ============================================================================

var deviceColumns = []string{
	"id", "name", "code", "status", "is_active", "ip_address",
	"username", "password", "snmp_community",
}

// ListDevices returns every device of the tenant, grouped by kind in the
// order of domain.DeviceKinds and ordered by id within a kind
func (r *Repository) ListDevices(ctx context.Context, tenantID int64) ([]domain.Device, error) {
	var devices []domain.Device

	for _, kind := range domain.DeviceKinds() {
		sb := sqlbuilder.SQLite.NewSelectBuilder()
		sb.Select(deviceColumns...)
		sb.From(deviceTables[kind])
		sb.Where(sb.Equal("tenant_id", tenantID))
		sb.OrderBy("id")

		query, args := sb.Build()
		var rows []deviceRow
		if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
			return nil, errors.Wrap(err, "failed to query devices", j.KV("kind", kind))
		}

		for _, row := range rows {
			devices = append(devices, row.toDomain(kind))
		}
	}

	return devices, nil
}

// GetDevice retrieves a single device by kind and id
func (r *Repository) GetDevice(ctx context.Context, tenantID int64, ref domain.DeviceRef) (*domain.Device, error) {
	table, ok := deviceTables[ref.Kind]
	if !ok {
		return nil, errors.Wrap(domain.ErrBadRequest, "unknown device type", j.KV("kind", ref.Kind))
	}

	sb := sqlbuilder.SQLite.NewSelectBuilder()
	sb.Select(deviceColumns...)
	sb.From(table)
	sb.Where(sb.Equal("tenant_id", tenantID), sb.Equal("id", ref.ID))

	query, args := sb.Build()
	var row deviceRow
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "failed to query device", j.KV("uid", ref.UID()))
	}

	d := row.toDomain(ref.Kind)
	return &d, nil
}

// ============================================================================
// Connections
// ============================================================================

func connectionSelect() *sqlbuilder.SelectBuilder {
	sb := sqlbuilder.SQLite.NewSelectBuilder()
	sb.Select(
		"c.id", "c.source_kind", "c.source_id", "c.destination_kind", "c.destination_id",
		"c.kind", "c.source_port", "c.destination_port",
		"c.source_port_id", "c.destination_port_id", "c.metadata",
		sb.As("sp.name", "source_port_name"),
		sb.As("dp.name", "destination_port_name"),
	)
	sb.From(sb.As("connections", "c"))
	sb.JoinWithOption(sqlbuilder.LeftJoin, sb.As("device_ports", "sp"),
		"sp.tenant_id = c.tenant_id", "sp.id = c.source_port_id")
	sb.JoinWithOption(sqlbuilder.LeftJoin, sb.As("device_ports", "dp"),
		"dp.tenant_id = c.tenant_id", "dp.id = c.destination_port_id")
	return sb
}

// ListConnections returns every connection of the tenant ordered by id
func (r *Repository) ListConnections(ctx context.Context, tenantID int64) ([]domain.Connection, error) {
	sb := connectionSelect()
	sb.Where(sb.Equal("c.tenant_id", tenantID))
	sb.OrderBy("c.id")

	return r.queryConnections(ctx, sb)
}

// ConnectionsFor returns the connections leaving and entering a device
func (r *Repository) ConnectionsFor(ctx context.Context, tenantID int64, ref domain.DeviceRef) ([]domain.Connection, []domain.Connection, error) {
	sb := connectionSelect()
	sb.Where(
		sb.Equal("c.tenant_id", tenantID),
		sb.Or(
			sb.And(sb.Equal("c.source_kind", string(ref.Kind)), sb.Equal("c.source_id", ref.ID)),
			sb.And(sb.Equal("c.destination_kind", string(ref.Kind)), sb.Equal("c.destination_id", ref.ID)),
		),
	)
	sb.OrderBy("c.id")

	conns, err := r.queryConnections(ctx, sb)
	if err != nil {
		return nil, nil, err
	}

	var out, in []domain.Connection
	for _, c := range conns {
		// A self loop is reported in both directions
		if c.Source == ref {
			out = append(out, c)
		}
		if c.Destination == ref {
			in = append(in, c)
		}
	}
	return out, in, nil
}

func (r *Repository) queryConnections(ctx context.Context, sb *sqlbuilder.SelectBuilder) ([]domain.Connection, error) {
	query, args := sb.Build()
	var rows []connectionRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, errors.Wrap(err, "failed to query connections")
	}

	conns := make([]domain.Connection, 0, len(rows))
	for _, row := range rows {
		conns = append(conns, row.toDomain())
	}
	return conns, nil
}

// ============================================================================
// Positions
// ============================================================================

// ListPositions returns every saved node position of the tenant
func (r *Repository) ListPositions(ctx context.Context, tenantID int64) ([]domain.NodePosition, error) {
	sb := sqlbuilder.SQLite.NewSelectBuilder()
	sb.Select("node_uid", "x", "y")
	sb.From("node_positions")
	sb.Where(sb.Equal("tenant_id", tenantID))
	sb.OrderBy("node_uid")

	query, args := sb.Build()
	var rows []positionRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, errors.Wrap(err, "failed to query positions")
	}

	positions := make([]domain.NodePosition, 0, len(rows))
	for _, row := range rows {
		positions = append(positions, domain.NodePosition{NodeUID: row.NodeUID, X: row.X, Y: row.Y})
	}
	return positions, nil
}

// UpsertPositions inserts or updates node positions in a single transaction
func (r *Repository) UpsertPositions(ctx context.Context, tenantID int64, positions []domain.NodePosition) error {
	if len(positions) == 0 {
		return nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "failed to begin transaction")
	}
	defer tx.Rollback()

	for _, p := range positions {
		ib := sqlbuilder.SQLite.NewInsertBuilder()
		ib.InsertInto("node_positions")
		ib.Cols("tenant_id", "node_uid", "x", "y")
		ib.Values(tenantID, p.NodeUID, p.X, p.Y)
		ib.SQL("ON CONFLICT (tenant_id, node_uid) DO UPDATE SET x = excluded.x, y = excluded.y, updated_at = CURRENT_TIMESTAMP")

		query, args := ib.Build()
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return errors.Wrap(err, "failed to upsert position", j.KV("node_uid", p.NodeUID))
		}
	}

	return tx.Commit()
}
