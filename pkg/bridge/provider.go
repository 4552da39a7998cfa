package bridge

import (
	"encoding/json"
	"sort"

	"github.com/dbehnke/enocean-nexus/pkg/web"
)

// The bridge backs the dashboard API: live state from the registry and the
// metrics collector, history from the telegram repository.

// Status implements web.Provider
func (b *Bridge) Status() web.StatusInfo {
	connected := false
	if c, ok := b.transport.(interface{ Connected() bool }); ok {
		connected = c.Connected()
	}
	return web.StatusInfo{
		Service:            "enocean-nexus",
		Version:            b.version,
		TransportConnected: connected,
		LearnMode:          b.LearnMode(),
		TelegramsReceived:  b.metrics.GetTelegramsReceived(),
		TelegramsSent:      b.metrics.GetTelegramsSent(),
		TeachIns:           b.metrics.GetTeachIns(),
		EquipmentCount:     b.registry.Count(),
	}
}

// Equipments implements web.Provider
func (b *Bridge) Equipments() []web.EquipmentInfo {
	all := b.registry.All()
	sort.Slice(all, func(i, j int) bool { return all[i].Name < all[j].Name })

	out := make([]web.EquipmentInfo, 0, len(all))
	for _, eq := range all {
		info := web.EquipmentInfo{
			Name:    eq.Name,
			Address: eq.AddressLabel(),
			EEP:     eq.Profile.Key.String(),
			Topic:   eq.Topic,
			Learned: eq.Learned(),
			Ignored: eq.Ignore,
		}
		if b.states != nil {
			if state, err := b.states.GetByAddress(eq.AddressLabel()); err == nil && state != nil {
				info.DBm = state.DBm
				info.LastSeen = state.LastSeen
				if state.Values != "" {
					var values map[string]interface{}
					if err := json.Unmarshal([]byte(state.Values), &values); err == nil {
						info.Values = values
					}
				}
			}
		}
		out = append(out, info)
	}
	return out
}

// Activity implements web.Provider
func (b *Bridge) Activity(limit int) []web.ActivityEntry {
	if b.telegrams == nil {
		return []web.ActivityEntry{}
	}
	records, err := b.telegrams.GetRecent(limit)
	if err != nil {
		b.log.Warn("Failed to load activity")
		return []web.ActivityEntry{}
	}
	out := make([]web.ActivityEntry, 0, len(records))
	for i := range records {
		rec := &records[i]
		out = append(out, web.ActivityEntry{
			Equipment:  rec.Equipment,
			Address:    rec.Address,
			RORG:       rec.RORG,
			Direction:  rec.Direction,
			DBm:        rec.DBm,
			TeachIn:    rec.TeachIn,
			Values:     rec.Values,
			ReceivedAt: rec.ReceivedAt,
		})
	}
	return out
}
