package model

import (
	"fmt"
	"strconv"
)

// WeightUnit is the unit a user records body weight in.
type WeightUnit string

const (
	WeightUnitKG WeightUnit = "KG"
	WeightUnitLB WeightUnit = "LB"
)

// WeightUnits lists every accepted weight unit.
var WeightUnits = []WeightUnit{WeightUnitKG, WeightUnitLB}

// Valid reports whether u is one of the known units.
func (u WeightUnit) Valid() bool {
	for _, w := range WeightUnits {
		if u == w {
			return true
		}
	}
	return false
}

// UserRef is the owning user of a settings record.
type UserRef struct {
	ID    int64  `json:"id"`
	Login string `json:"login,omitempty"`
}

// UserSettings holds one user's configurable preferences.
// ID is assigned by the server; zero means the record was never persisted.
type UserSettings struct {
	ID           int64       `json:"id,omitempty"`
	WeeklyGoal   *int        `json:"weeklyGoal,omitempty"`
	WeightUnit   *WeightUnit `json:"weightUnit,omitempty"`
	ReminderTime string      `json:"reminderTime,omitempty"`
	User         *UserRef    `json:"user,omitempty"`
}

// IsNew reports whether the record has not been persisted yet.
func (s *UserSettings) IsNew() bool {
	return s.ID == 0
}

// SameEntity reports whether s and other identify the same persisted record.
// Unsaved records are never the same entity as anything.
func (s *UserSettings) SameEntity(other *UserSettings) bool {
	if s == nil || other == nil || s.ID == 0 || other.ID == 0 {
		return false
	}
	return s.ID == other.ID
}

// Clone returns a deep copy of s.
func (s *UserSettings) Clone() *UserSettings {
	if s == nil {
		return nil
	}
	c := *s
	if s.WeeklyGoal != nil {
		g := *s.WeeklyGoal
		c.WeeklyGoal = &g
	}
	if s.WeightUnit != nil {
		u := *s.WeightUnit
		c.WeightUnit = &u
	}
	if s.User != nil {
		u := *s.User
		c.User = &u
	}
	return &c
}

// UserID returns the owning user's id, or 0 when unset.
func (s *UserSettings) UserID() int64 {
	if s.User == nil {
		return 0
	}
	return s.User.ID
}

func (s UserSettings) String() string {
	goal := "null"
	if s.WeeklyGoal != nil {
		goal = strconv.Itoa(*s.WeeklyGoal)
	}
	unit := "null"
	if s.WeightUnit != nil {
		unit = string(*s.WeightUnit)
	}
	return fmt.Sprintf("UserSettings{id=%d, weeklyGoal='%s', weightUnit='%s', reminderTime='%s'}",
		s.ID, goal, unit, s.ReminderTime)
}

// CreateUserSettingsRequest is the payload for creating user settings.
// ID must be absent; it is bound only so the handler can reject it.
type CreateUserSettingsRequest struct {
	ID           int64       `json:"id"`
	WeeklyGoal   *int        `json:"weeklyGoal" binding:"omitempty,min=10"`
	WeightUnit   *WeightUnit `json:"weightUnit" binding:"omitempty,weightunit"`
	ReminderTime string      `json:"reminderTime" binding:"omitempty,hhmm"`
	User         *UserRef    `json:"user"`
}

// UpdateUserSettingsRequest is the payload for replacing user settings.
// A zero ID turns the update into a create.
type UpdateUserSettingsRequest struct {
	ID           int64       `json:"id"`
	WeeklyGoal   *int        `json:"weeklyGoal" binding:"omitempty,min=10"`
	WeightUnit   *WeightUnit `json:"weightUnit" binding:"omitempty,weightunit"`
	ReminderTime string      `json:"reminderTime" binding:"omitempty,hhmm"`
	User         *UserRef    `json:"user"`
}

// ToEntity converts the request into an entity.
func (r *CreateUserSettingsRequest) ToEntity() *UserSettings {
	return &UserSettings{
		ID:           r.ID,
		WeeklyGoal:   r.WeeklyGoal,
		WeightUnit:   r.WeightUnit,
		ReminderTime: r.ReminderTime,
		User:         r.User,
	}
}

// ToEntity converts the request into an entity.
func (r *UpdateUserSettingsRequest) ToEntity() *UserSettings {
	return &UserSettings{
		ID:           r.ID,
		WeeklyGoal:   r.WeeklyGoal,
		WeightUnit:   r.WeightUnit,
		ReminderTime: r.ReminderTime,
		User:         r.User,
	}
}
