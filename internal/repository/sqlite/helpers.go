package sqlite

import (
	"database/sql"

	"github.com/stefanfredik/openaccess-sub000/internal/domain"
)

// ============================================================================
// Null Type Conversion Helpers
// ============================================================================

// nullToString safely converts sql.NullString to string
func nullToString(ns sql.NullString) string {
	if ns.Valid {
		return ns.String
	}
	return ""
}

// nullToInt64Ptr safely converts sql.NullInt64 to *int64
func nullToInt64Ptr(ni sql.NullInt64) *int64 {
	if ni.Valid {
		v := ni.Int64
		return &v
	}
	return nil
}

// nullToBoolPtr safely converts sql.NullBool to *bool
func nullToBoolPtr(nb sql.NullBool) *bool {
	if nb.Valid {
		v := nb.Bool
		return &v
	}
	return nil
}

// stringToNull safely converts string to sql.NullString
func stringToNull(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

// int64PtrToNull safely converts *int64 to sql.NullInt64
func int64PtrToNull(i *int64) sql.NullInt64 {
	if i == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *i, Valid: true}
}

// boolPtrToNull safely converts *bool to sql.NullBool
func boolPtrToNull(b *bool) sql.NullBool {
	if b == nil {
		return sql.NullBool{}
	}
	return sql.NullBool{Bool: *b, Valid: true}
}

// ============================================================================
// Device Rows
// ============================================================================

// deviceRow is shared by every device table; the kind comes from the table
type deviceRow struct {
	ID            int64          `db:"id"`
	Name          string         `db:"name"`
	Code          sql.NullString `db:"code"`
	Status        sql.NullString `db:"status"`
	IsActive      sql.NullBool   `db:"is_active"`
	IPAddress     sql.NullString `db:"ip_address"`
	Username      sql.NullString `db:"username"`
	Password      sql.NullString `db:"password"`
	SNMPCommunity sql.NullString `db:"snmp_community"`
}

func (r *deviceRow) toDomain(kind domain.DeviceKind) domain.Device {
	return domain.Device{
		Kind:          kind,
		ID:            r.ID,
		Name:          r.Name,
		Code:          nullToString(r.Code),
		Status:        nullToString(r.Status),
		IsActive:      nullToBoolPtr(r.IsActive),
		IPAddress:     nullToString(r.IPAddress),
		Username:      nullToString(r.Username),
		Password:      nullToString(r.Password),
		SNMPCommunity: nullToString(r.SNMPCommunity),
	}
}

// ============================================================================
// Connection Rows
// ============================================================================

type connectionRow struct {
	ID                  int64          `db:"id"`
	SourceKind          string         `db:"source_kind"`
	SourceID            int64          `db:"source_id"`
	DestinationKind     string         `db:"destination_kind"`
	DestinationID       int64          `db:"destination_id"`
	Kind                sql.NullString `db:"kind"`
	SourcePort          sql.NullString `db:"source_port"`
	DestinationPort     sql.NullString `db:"destination_port"`
	SourcePortID        sql.NullInt64  `db:"source_port_id"`
	DestinationPortID   sql.NullInt64  `db:"destination_port_id"`
	Metadata            sql.NullString `db:"metadata"`
	SourcePortName      sql.NullString `db:"source_port_name"`
	DestinationPortName sql.NullString `db:"destination_port_name"`
}

func (r *connectionRow) toDomain() domain.Connection {
	return domain.Connection{
		ID:                  r.ID,
		Source:              domain.DeviceRef{Kind: domain.DeviceKind(r.SourceKind), ID: r.SourceID},
		Destination:         domain.DeviceRef{Kind: domain.DeviceKind(r.DestinationKind), ID: r.DestinationID},
		Kind:                domain.ConnectionKind(nullToString(r.Kind)),
		SourcePort:          nullToString(r.SourcePort),
		DestinationPort:     nullToString(r.DestinationPort),
		SourcePortID:        nullToInt64Ptr(r.SourcePortID),
		SourcePortName:      nullToString(r.SourcePortName),
		DestinationPortID:   nullToInt64Ptr(r.DestinationPortID),
		DestinationPortName: nullToString(r.DestinationPortName),
		Metadata:            nullToString(r.Metadata),
	}
}

type positionRow struct {
	NodeUID string  `db:"node_uid"`
	X       float64 `db:"x"`
	Y       float64 `db:"y"`
}

// ============================================================================
// Fiber Rows
// ============================================================================

type cableRow struct {
	ID        int64  `db:"id"`
	Name      string `db:"name"`
	CoreCount int    `db:"core_count"`
}

func (r *cableRow) toDomain() domain.Cable {
	return domain.Cable{ID: r.ID, Name: r.Name, CoreCount: r.CoreCount}
}

type coreRow struct {
	ID      int64          `db:"id"`
	CableID int64          `db:"cable_id"`
	TubeID  sql.NullInt64  `db:"tube_id"`
	Number  int            `db:"number"`
	Color   sql.NullString `db:"color"`
	Status  string         `db:"status"`
}

func (r *coreRow) toDomain() domain.CableCore {
	return domain.CableCore{
		ID:      r.ID,
		CableID: r.CableID,
		TubeID:  nullToInt64Ptr(r.TubeID),
		Number:  r.Number,
		Color:   nullToString(r.Color),
		Status:  domain.CoreStatus(r.Status),
	}
}

type enclosureRow struct {
	ID   int64          `db:"id"`
	Name string         `db:"name"`
	Code sql.NullString `db:"code"`
}

func (r *enclosureRow) toDomain(kind domain.EnclosureKind) domain.Enclosure {
	return domain.Enclosure{Kind: kind, ID: r.ID, Name: r.Name, Code: nullToString(r.Code)}
}

type spliceRow struct {
	ID             int64   `db:"id"`
	IncomingCoreID int64   `db:"incoming_core_id"`
	OutgoingCoreID int64   `db:"outgoing_core_id"`
	EnclosureKind  string  `db:"enclosure_kind"`
	EnclosureID    int64   `db:"enclosure_id"`
	LossDB         float64 `db:"loss_db"`
}

func (r *spliceRow) toDomain() domain.FiberSplice {
	return domain.FiberSplice{
		ID:             r.ID,
		IncomingCoreID: r.IncomingCoreID,
		OutgoingCoreID: r.OutgoingCoreID,
		Enclosure:      domain.EnclosureRef{Kind: domain.EnclosureKind(r.EnclosureKind), ID: r.EnclosureID},
		LossDB:         r.LossDB,
	}
}

type terminationRow struct {
	ID       int64  `db:"id"`
	CoreID   int64  `db:"core_id"`
	PortKind string `db:"port_kind"`
	PortID   int64  `db:"port_id"`
}

func (r *terminationRow) toDomain() domain.PortTermination {
	return domain.PortTermination{
		ID:       r.ID,
		CoreID:   r.CoreID,
		PortKind: domain.PortKind(r.PortKind),
		PortID:   r.PortID,
	}
}
