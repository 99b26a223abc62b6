package domain

import (
	"strconv"
	"strings"

	"github.com/luno/jettison/errors"
	"github.com/luno/jettison/j"
)

// UIDSeparator joins a kind tag and an id in a uid string
const UIDSeparator = "-"

const (
	StatusActive   = "Active"
	StatusInactive = "Inactive"
)

// DeviceRef addresses a device by kind and id
type DeviceRef struct {
	Kind DeviceKind `json:"kind"`
	ID   int64      `json:"id"`
}

// UID returns the stable "<kind>-<id>" identifier of the device
func (r DeviceRef) UID() string {
	return string(r.Kind) + UIDSeparator + strconv.FormatInt(r.ID, 10)
}

// ParseUID splits a uid into its kind tag and numeric id.
//
// The kind tag may itself contain the separator, so the split happens on the
// last separator only. The tag is returned verbatim; resolving it to a
// DeviceKind is left to ParseDeviceKind.
func ParseUID(uid string) (string, int64, error) {
	i := strings.LastIndex(uid, UIDSeparator)
	if i <= 0 || i == len(uid)-1 {
		return "", 0, errors.Wrap(ErrBadRequest, "malformed uid", j.KV("uid", uid))
	}

	id, err := strconv.ParseInt(uid[i+1:], 10, 64)
	if err != nil {
		return "", 0, errors.Wrap(ErrBadRequest, "uid id is not numeric", j.KV("uid", uid))
	}

	return uid[:i], id, nil
}

// ParseDeviceRef parses a uid into a DeviceRef with a known kind
func ParseDeviceRef(uid string) (DeviceRef, error) {
	tag, id, err := ParseUID(uid)
	if err != nil {
		return DeviceRef{}, err
	}

	kind, ok := ParseDeviceKind(tag)
	if !ok {
		return DeviceRef{}, errors.Wrap(ErrNotFound, "unknown device type", j.KV("kind", tag))
	}

	return DeviceRef{Kind: kind, ID: id}, nil
}

// Device is a network device of any kind
type Device struct {
	Kind      DeviceKind `json:"kind"`
	ID        int64      `json:"id"`
	Name      string     `json:"name"`
	Code      string     `json:"code"`
	Status    string     `json:"status,omitempty"`
	IsActive  *bool      `json:"is_active,omitempty"`
	IPAddress string     `json:"ip_address,omitempty"`

	// Credential material never leaves the store
	Username      string `json:"-"`
	Password      string `json:"-"`
	SNMPCommunity string `json:"-"`
}

// Ref returns the device's kind/id reference
func (d *Device) Ref() DeviceRef {
	return DeviceRef{Kind: d.Kind, ID: d.ID}
}

// UID returns the device's stable identifier
func (d *Device) UID() string {
	return d.Ref().UID()
}

// DisplayStatus returns the explicit status if set, otherwise Active/Inactive
// derived from the activity flag
func (d *Device) DisplayStatus() string {
	if d.Status != "" {
		return d.Status
	}
	if d.IsActive != nil && *d.IsActive {
		return StatusActive
	}
	return StatusInactive
}

// Port is a named port on a device
type Port struct {
	ID     int64     `json:"id"`
	Device DeviceRef `json:"device"`
	Name   string    `json:"name"`
}
