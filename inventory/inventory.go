// SPDX-FileCopyrightText: 2026 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

// Package inventory answers the everyday device, interface and address questions
// from the mirror.
package inventory

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/spf13/cast"
	"github.com/xmidt-org/nbmirror/mirror"
	"github.com/xmidt-org/nbmirror/model"
	"go.uber.org/zap"
)

// LAGTypeLabel is the interface type label of link aggregation groups.
const LAGTypeLabel = "Link Aggregation Group (LAG)"

const defaultCacheTime = time.Minute

var (
	ErrNilMirror = errors.New("mirror cannot be nil")
	ErrNotLAG    = errors.New("interface is not a link aggregation group")
)

// Collections the queries read.
var (
	Devices        = model.NewPath("dcim", "devices")
	DeviceTypes    = model.NewPath("dcim", "device_types")
	Interfaces     = model.NewPath("dcim", "interfaces")
	Racks          = model.NewPath("dcim", "racks")
	VirtualChassis = model.NewPath("dcim", "virtual_chassis")
	IPAddresses    = model.NewPath("ipam", "ip_addresses")
	Prefixes       = model.NewPath("ipam", "prefixes")
	VLANs          = model.NewPath("ipam", "vlans")
)

// Config is the inventory section of the configuration.
type Config struct {
	// CacheTime bounds how long derived answers are kept in memory.  LAG
	// memberships are rebuilt after half of it.
	// (Optional). Defaults to 60 seconds.
	CacheTime time.Duration
}

type Inventory struct {
	mirror *mirror.Mirror
	config Config
	logger *zap.Logger
	now    func() time.Time

	lock       sync.Mutex
	lags       map[int64][]model.Object
	lagsExpire time.Time
}

func New(m *mirror.Mirror, config Config, logger *zap.Logger) (*Inventory, error) {
	if m == nil {
		return nil, ErrNilMirror
	}
	if config.CacheTime <= 0 {
		config.CacheTime = defaultCacheTime
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Inventory{
		mirror: m,
		config: config,
		logger: logger,
		now:    time.Now,
	}, nil
}

func (i *Inventory) index(ctx context.Context, p model.Path, attribute string, v interface{}) ([]model.Object, error) {
	return i.mirror.Path(p.Segments()...).GetIndex(ctx, attribute, model.Exact(v))
}

func (i *Inventory) all(ctx context.Context, p model.Path) ([]model.Object, error) {
	return i.mirror.Path(p.Segments()...).All(ctx)
}

func (i *Inventory) DevicesByName(ctx context.Context, name string) ([]model.Object, error) {
	return i.index(ctx, Devices, "name", name)
}

func (i *Inventory) DevicesBySerial(ctx context.Context, serial string) ([]model.Object, error) {
	return i.index(ctx, Devices, "serial", serial)
}

// DevicesByRole matches the role slug.
func (i *Inventory) DevicesByRole(ctx context.Context, role string) ([]model.Object, error) {
	return i.index(ctx, Devices, "role.slug", role)
}

// DevicesByType matches the device type slug.
func (i *Inventory) DevicesByType(ctx context.Context, deviceType string) ([]model.Object, error) {
	return i.index(ctx, Devices, "device_type.slug", deviceType)
}

func (i *Inventory) DeviceTypesByName(ctx context.Context, name string) ([]model.Object, error) {
	return i.index(ctx, DeviceTypes, "name", name)
}

// HasPoE reports the poe_capable custom field of the first device type with the
// given model.  Unknown models are not PoE capable.
func (i *Inventory) HasPoE(ctx context.Context, deviceModel string) (bool, error) {
	types, err := i.index(ctx, DeviceTypes, "model", deviceModel)
	if err != nil || len(types) == 0 {
		return false, err
	}
	v, _ := types[0].Walk([]string{"custom_fields", "poe_capable"})
	return cast.ToBool(v), nil
}

// InterfacesByDeviceName returns the interfaces of a device.  A name that belongs
// to a virtual chassis returns the interfaces of every member device.
func (i *Inventory) InterfacesByDeviceName(ctx context.Context, name string) ([]model.Object, error) {
	chassis, err := i.index(ctx, VirtualChassis, "name", name)
	if err != nil {
		return nil, err
	}
	if len(chassis) == 0 {
		return i.index(ctx, Interfaces, "device.name", name)
	}

	id, err := chassis[0].ID()
	if err != nil {
		return nil, err
	}
	members, err := i.index(ctx, Devices, "virtual_chassis.id", id)
	if err != nil {
		return nil, err
	}

	var result []model.Object
	for _, m := range members {
		name, ok := m["name"].(string)
		if !ok {
			continue
		}
		interfaces, err := i.index(ctx, Interfaces, "device.name", name)
		if err != nil {
			return nil, err
		}
		result = append(result, interfaces...)
	}
	return result, nil
}

// IPAddressesByInterface returns the addresses assigned to an interface.
func (i *Inventory) IPAddressesByInterface(ctx context.Context, interfaceID int64) ([]model.Object, error) {
	return i.index(ctx, IPAddresses, "assigned_object.id", interfaceID)
}

// LAGMembers returns the member interfaces of a LAG interface.  Memberships are
// computed for all LAGs at once and kept for half of CacheTime.
func (i *Inventory) LAGMembers(ctx context.Context, lagID int64) ([]model.Object, error) {
	i.lock.Lock()
	defer i.lock.Unlock()

	if i.lags == nil || !i.now().Before(i.lagsExpire) {
		lags, err := i.buildLAGs(ctx)
		if err != nil {
			return nil, err
		}
		i.lags = lags
		i.lagsExpire = i.now().Add(i.config.CacheTime / 2)
	}

	members, ok := i.lags[lagID]
	if !ok {
		return nil, ErrNotLAG
	}
	return members, nil
}

func (i *Inventory) buildLAGs(ctx context.Context) (map[int64][]model.Object, error) {
	interfaces := i.mirror.Path(Interfaces.Segments()...)
	groups, err := interfaces.GetIndex(ctx, "type.label", model.Exact(LAGTypeLabel))
	if err != nil {
		return nil, err
	}
	members, err := interfaces.GetIndex(ctx, "lag", model.Any)
	if err != nil {
		return nil, err
	}

	lags := make(map[int64][]model.Object, len(groups))
	for _, g := range groups {
		id, err := g.ID()
		if err != nil {
			return nil, err
		}
		lags[id] = nil
	}
	for _, m := range members {
		v, _ := m.Walk([]string{"lag", "id"})
		id, err := cast.ToInt64E(v)
		if err != nil {
			i.logger.Warn("interface has a LAG without an id", zap.Any("interface", m["id"]))
			continue
		}
		lags[id] = append(lags[id], m)
	}

	i.logger.Debug("built LAG memberships", zap.Int("lags", len(lags)))
	return lags, nil
}

func (i *Inventory) Prefixes(ctx context.Context) ([]model.Object, error) {
	return i.all(ctx, Prefixes)
}

func (i *Inventory) VLANs(ctx context.Context) ([]model.Object, error) {
	return i.all(ctx, VLANs)
}

func (i *Inventory) Devices(ctx context.Context) ([]model.Object, error) {
	return i.all(ctx, Devices)
}

func (i *Inventory) DeviceTypes(ctx context.Context) ([]model.Object, error) {
	return i.all(ctx, DeviceTypes)
}

// Racks returns the racks by name.
func (i *Inventory) Racks(ctx context.Context) (map[string]model.Object, error) {
	racks, err := i.all(ctx, Racks)
	if err != nil {
		return nil, err
	}
	result := make(map[string]model.Object, len(racks))
	for _, r := range racks {
		result[cast.ToString(r["name"])] = r
	}
	return result, nil
}

// Warm runs every query once so that the collections and indexes they read are
// synchronized and built.
func (i *Inventory) Warm(ctx context.Context) error {
	queries := []func() error{
		func() error { _, err := i.InterfacesByDeviceName(ctx, ""); return err },
		func() error { _, err := i.IPAddressesByInterface(ctx, 0); return err },
		func() error { _, err := i.Prefixes(ctx); return err },
		func() error { _, err := i.VLANs(ctx); return err },
		func() error { _, err := i.Devices(ctx); return err },
		func() error { _, err := i.DeviceTypes(ctx); return err },
		func() error { _, err := i.DeviceTypesByName(ctx, ""); return err },
		func() error { _, err := i.HasPoE(ctx, ""); return err },
		func() error { _, err := i.DevicesByName(ctx, ""); return err },
		func() error { _, err := i.DevicesBySerial(ctx, ""); return err },
		func() error { _, err := i.DevicesByRole(ctx, ""); return err },
		func() error { _, err := i.DevicesByType(ctx, ""); return err },
		func() error { _, err := i.buildLAGs(ctx); return err },
		func() error { _, err := i.all(ctx, mirror.ObjectTypesPath); return err },
	}
	for _, q := range queries {
		if err := q(); err != nil {
			return err
		}
	}
	return nil
}
