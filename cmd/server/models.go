package main

import (
	"time"

	"github.com/liamcoop/sopscript/highlight"
	"github.com/liamcoop/sopscript/sop"
)

// API Request and Response Models with Swagger annotations

// CompileResponse carries the compiled script and the pre-flight
// diagnostics for it. Errors gate export, not preview.
type CompileResponse struct {
	Script   string   `json:"script" example:"# SOP: Support Escalation"`
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
} // @name CompileResponse

// ValidateResponse represents the outcome of a structural pre-flight.
type ValidateResponse struct {
	Valid    bool     `json:"valid" example:"false"`
	Errors   []string `json:"errors" example:"SOP name is required"`
	Warnings []string `json:"warnings"`
} // @name ValidateResponse

// HighlightRequest carries script text to be re-tokenized for display.
type HighlightRequest struct {
	Script string `json:"script" example:"TRIGGER message" binding:"required"`
} // @name HighlightRequest

// HighlightResponse carries one token list per script line.
type HighlightResponse struct {
	Lines [][]highlight.Token `json:"lines"`
} // @name HighlightResponse

// SOPResponse represents a stored SOP in API responses.
type SOPResponse struct {
	ID        string     `json:"id" example:"123e4567-e89b-12d3-a456-426614174000"`
	Name      string     `json:"name" example:"Support Escalation"`
	Version   string     `json:"version,omitempty" example:"1.2"`
	Rules     []sop.Rule `json:"rules"`
	CreatedAt time.Time  `json:"createdAt" example:"2024-01-15T10:30:00Z"`
	UpdatedAt time.Time  `json:"updatedAt" example:"2024-01-15T10:30:00Z"`
} // @name SOPResponse

// SOPsListResponse represents the response for listing SOPs.
type SOPsListResponse struct {
	SOPs []SOPResponse `json:"sops"`
} // @name SOPsListResponse

// ErrorResponse represents a non-diagnostic error response.
type ErrorResponse struct {
	Error   string `json:"error" example:"sop not found"`
	Details string `json:"details,omitempty"`
} // @name ErrorResponse

// HealthResponse represents the health check response.
type HealthResponse struct {
	Status  string `json:"status" example:"healthy"`
	Storage string `json:"storage" example:"postgres"`
} // @name HealthResponse
