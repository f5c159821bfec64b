package models

import (
	"encoding/json"
	"time"
)

// NullableString tells apart the three states of an optional JSON string:
//   - absent:        Set=false
//   - explicit null: Set=true, Valid=false
//   - value:         Set=true, Valid=true
//
// A plain *string cannot, because encoding/json maps both absent and null to nil.
type NullableString struct {
	Value string
	Valid bool
	Set   bool
}

// UnmarshalJSON records that the field was present before decoding it
func (ns *NullableString) UnmarshalJSON(data []byte) error {
	ns.Set = true

	if string(data) == "null" {
		ns.Valid = false
		ns.Value = ""
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	ns.Value = s
	ns.Valid = true
	return nil
}

// MarshalJSON renders null when the value is not valid
func (ns NullableString) MarshalJSON() ([]byte, error) {
	if !ns.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(ns.Value)
}

// ToPtr returns nil for null, otherwise a pointer to the value
func (ns NullableString) ToPtr() *string {
	if !ns.Valid {
		return nil
	}
	return &ns.Value
}

// NullableTime is the time.Time counterpart of NullableString
type NullableTime struct {
	Value time.Time
	Valid bool
	Set   bool
}

// UnmarshalJSON records that the field was present before decoding it
func (nt *NullableTime) UnmarshalJSON(data []byte) error {
	nt.Set = true

	if string(data) == "null" {
		nt.Valid = false
		nt.Value = time.Time{}
		return nil
	}

	var t time.Time
	if err := json.Unmarshal(data, &t); err != nil {
		return err
	}
	nt.Value = t
	nt.Valid = true
	return nil
}

// MarshalJSON renders null when the value is not valid
func (nt NullableTime) MarshalJSON() ([]byte, error) {
	if !nt.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(nt.Value)
}

// ToPtr returns nil for null, otherwise a pointer to the value
func (nt NullableTime) ToPtr() *time.Time {
	if !nt.Valid {
		return nil
	}
	return &nt.Value
}

// Apply overwrites *dst when the field was present: with nil for null and the
// value otherwise. Absent fields leave *dst untouched.
func (nt NullableTime) Apply(dst **time.Time) {
	if nt.Set {
		*dst = nt.ToPtr()
	}
}
