package models

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// SlotRef identifies a (date, time) slot.
type SlotRef struct {
	Date string `json:"date"`
	Time string `json:"time"`
}

const (
	extrasKeyRescheduled     = "rescheduled"
	extrasKeyPriceCents      = "price_cents"
	extrasKeyPlanLabel       = "plan_label"
	extrasKeyRescheduledFrom = "rescheduled_from"
)

// AppointmentExtras holds optional structured facts attached to a booking.
// Nil fields are absent. Keys this version does not know are kept verbatim in
// Unknown so older or newer writers never lose each other's data.
type AppointmentExtras struct {
	Rescheduled     *bool
	PriceCents      *int64
	PlanLabel       *string
	RescheduledFrom *SlotRef
	Unknown         map[string]json.RawMessage
}

// ParseExtras decodes raw JSON into extras. Empty or malformed input yields
// the zero record.
func ParseExtras(raw []byte) AppointmentExtras {
	var out AppointmentExtras
	if err := out.UnmarshalJSON(raw); err != nil {
		return AppointmentExtras{}
	}
	return out
}

// PriceSnapshot builds a patch carrying the price-at-time-of-sale.
func PriceSnapshot(priceCents int64, planLabel string) AppointmentExtras {
	patch := AppointmentExtras{PriceCents: &priceCents}
	if planLabel != "" {
		patch.PlanLabel = &planLabel
	}
	return patch
}

// RescheduledPatch marks a booking as moved away from the given slot.
func RescheduledPatch(from SlotRef) AppointmentExtras {
	flag := true
	return AppointmentExtras{Rescheduled: &flag, RescheduledFrom: &from}
}

// Merge returns a shallow merge of e and patch. Fields set on patch win and
// unknown keys are unioned. Neither input is modified.
func (e AppointmentExtras) Merge(patch AppointmentExtras) AppointmentExtras {
	out := e
	if patch.Rescheduled != nil {
		out.Rescheduled = patch.Rescheduled
	}
	if patch.PriceCents != nil {
		out.PriceCents = patch.PriceCents
	}
	if patch.PlanLabel != nil {
		out.PlanLabel = patch.PlanLabel
	}
	if patch.RescheduledFrom != nil {
		out.RescheduledFrom = patch.RescheduledFrom
	}
	if len(e.Unknown)+len(patch.Unknown) > 0 {
		out.Unknown = make(map[string]json.RawMessage, len(e.Unknown)+len(patch.Unknown))
		for k, v := range e.Unknown {
			out.Unknown[k] = v
		}
		for k, v := range patch.Unknown {
			out.Unknown[k] = v
		}
		// a typed value set by the patch supersedes a stale raw one
		for _, key := range patch.setKeys() {
			delete(out.Unknown, key)
		}
	}
	return out
}

func (e AppointmentExtras) setKeys() []string {
	var keys []string
	if e.Rescheduled != nil {
		keys = append(keys, extrasKeyRescheduled)
	}
	if e.PriceCents != nil {
		keys = append(keys, extrasKeyPriceCents)
	}
	if e.PlanLabel != nil {
		keys = append(keys, extrasKeyPlanLabel)
	}
	if e.RescheduledFrom != nil {
		keys = append(keys, extrasKeyRescheduledFrom)
	}
	return keys
}

func (e AppointmentExtras) IsRescheduled() bool {
	return e.Rescheduled != nil && *e.Rescheduled
}

// Price returns the stored price snapshot, if any.
func (e AppointmentExtras) Price() (int64, bool) {
	if e.PriceCents == nil {
		return 0, false
	}
	return *e.PriceCents, true
}

func (e AppointmentExtras) Label() string {
	if e.PlanLabel == nil {
		return ""
	}
	return *e.PlanLabel
}

func (e AppointmentExtras) MarshalJSON() ([]byte, error) {
	fields := make(map[string]any, len(e.Unknown)+4)
	for k, v := range e.Unknown {
		fields[k] = v
	}
	if e.Rescheduled != nil {
		fields[extrasKeyRescheduled] = *e.Rescheduled
	}
	if e.PriceCents != nil {
		fields[extrasKeyPriceCents] = *e.PriceCents
	}
	if e.PlanLabel != nil {
		fields[extrasKeyPlanLabel] = *e.PlanLabel
	}
	if e.RescheduledFrom != nil {
		fields[extrasKeyRescheduledFrom] = *e.RescheduledFrom
	}
	return json.Marshal(fields)
}

// UnmarshalJSON accepts any JSON object. Known keys with the wrong shape read
// as absent but keep their raw value in Unknown, so a later write returns them
// as they were.
func (e *AppointmentExtras) UnmarshalJSON(data []byte) error {
	*e = AppointmentExtras{}
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &raw); err != nil {
		return fmt.Errorf("decode appointment extras: %w", err)
	}

	for key, value := range raw {
		var ok bool
		switch key {
		case extrasKeyRescheduled:
			var v bool
			if ok = json.Unmarshal(value, &v) == nil; ok {
				e.Rescheduled = &v
			}
		case extrasKeyPriceCents:
			var v int64
			if ok = json.Unmarshal(value, &v) == nil; ok {
				e.PriceCents = &v
			}
		case extrasKeyPlanLabel:
			var v string
			if ok = json.Unmarshal(value, &v) == nil; ok {
				e.PlanLabel = &v
			}
		case extrasKeyRescheduledFrom:
			var v SlotRef
			if ok = json.Unmarshal(value, &v) == nil; ok {
				e.RescheduledFrom = &v
			}
		}
		if ok {
			continue
		}
		// unknown keys and mistyped known keys ride along untouched
		if e.Unknown == nil {
			e.Unknown = make(map[string]json.RawMessage)
		}
		e.Unknown[key] = append(json.RawMessage(nil), value...)
	}
	return nil
}

// Value implements driver.Valuer.
func (e AppointmentExtras) Value() (driver.Value, error) {
	payload, err := e.MarshalJSON()
	if err != nil {
		return nil, err
	}
	return string(payload), nil
}

// Scan implements sql.Scanner. Unreadable column contents decode to the zero
// record instead of failing the row.
func (e *AppointmentExtras) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*e = AppointmentExtras{}
	case []byte:
		*e = ParseExtras(v)
	case string:
		*e = ParseExtras([]byte(v))
	default:
		*e = AppointmentExtras{}
	}
	return nil
}
