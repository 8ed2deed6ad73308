package models

import "time"

// WorkOrder groups the reports produced during one service visit. Its header
// fields are stamped onto every page of every report document.
type WorkOrder struct {
	ID           string    `json:"id"`
	Number       string    `json:"number"`
	Client       string    `json:"client"`
	Sector       string    `json:"sector,omitempty"`
	Location     string    `json:"location,omitempty"`
	Scope        string    `json:"service_scope,omitempty"`
	ServiceLevel string    `json:"service_level,omitempty"`
	Frequency    string    `json:"frequency,omitempty"`
	Date         string    `json:"date,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// Part is one inspected piece of equipment.
type Part struct {
	ID          string `json:"id"`
	WorkOrderID string `json:"work_order_id"`
	Code        string `json:"code"`
	Description string `json:"description,omitempty"`
	PN          string `json:"pn,omitempty"`
	Serial      string `json:"serial,omitempty"`
}
