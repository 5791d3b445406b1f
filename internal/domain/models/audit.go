package models

import "time"

// GenerationLog is the audit row written once per generation run.
type GenerationLog struct {
	ID             int64     `json:"id"`
	GenerationDate time.Time `json:"generationDate"`
	TripsGenerated int       `json:"tripsGenerated"`
	PeriodStart    time.Time `json:"periodStart"`
	PeriodEnd      time.Time `json:"periodEnd"`
	GeneratedBy    int64     `json:"generatedBy"`
}

// Operator is a back-office login identity. Only used to attribute generation
// runs; role-based authorization stays outside this service.
type Operator struct {
	ID           int64
	Name         string
	Username     string
	Email        string
	PasswordHash string
	Role         string
	Status       string
}
