// Package models contains data structures for the application
package models

import (
	"time"
)

// Direction is the crossing direction of a pass event relative to the facility
type Direction string

const (
	DirectionIn      Direction = "IN"
	DirectionOut     Direction = "OUT"
	DirectionUnknown Direction = "UNKNOWN"
)

// RawEvent represents one badge swipe read from the access-control database
type RawEvent struct {
	EmployeeID string
	Timestamp  time.Time
	FromZone   string
	ToZone     string
	StatusCode int

	// Identity fields are carried through for reporting only
	CardID         string
	EventCode      int
	DepartmentName string
	LastName       string
	FirstName      string
	MiddleName     string
}

// ClassifiedEvent is a RawEvent with a derived crossing direction
type ClassifiedEvent struct {
	RawEvent
	Direction Direction
}

// AttendanceInterval is one IN -> OUT span of an employee
type AttendanceInterval struct {
	EmployeeID string
	Arrival    time.Time
	Departure  time.Time
	Total      time.Duration
}

// Employee holds identity metadata joined onto intervals for the report
type Employee struct {
	ID         string
	LastName   string
	FirstName  string
	MiddleName string
	Department string
}

// ReportRow is one line of the attendance spreadsheet
type ReportRow struct {
	FullName     string
	EmployeeID   string
	Department   string
	Arrival      time.Time
	Departure    time.Time
	TotalMinutes int
}

// Recipient maps a department to the mailbox that receives its reports
type Recipient struct {
	ID         string
	Department string
	Email      string
	IsActive   bool
}
