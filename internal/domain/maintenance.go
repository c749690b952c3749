package domain

import "time"

type DamageStatus string

const (
	DamageStatusReported  DamageStatus = "reported"
	DamageStatusConfirmed DamageStatus = "confirmed"
	DamageStatusRepaired  DamageStatus = "repaired"
	DamageStatusCharged   DamageStatus = "charged"
)

type MaintenanceType string

const (
	MaintenanceTypeRoutine     MaintenanceType = "routine"
	MaintenanceTypeRepair      MaintenanceType = "repair"
	MaintenanceTypeReplacement MaintenanceType = "replacement"
	MaintenanceTypeCleaning    MaintenanceType = "cleaning"
)

type MaintenanceStatus string

const (
	MaintenanceStatusPending    MaintenanceStatus = "pending"
	MaintenanceStatusInProgress MaintenanceStatus = "in_progress"
	MaintenanceStatusCompleted  MaintenanceStatus = "completed"
)

// DamageReport is raised when a unit comes back damaged. Settlement creates
// one per damaged unit; the repair workflow moves it through its statuses.
type DamageReport struct {
	ID              int64        `json:"id"`
	RentalDetailID  *int64       `json:"rental_detail_id,omitempty"`
	ReportedByID    *int64       `json:"reported_by_id,omitempty"`
	Description     string       `json:"damage_description"`
	DamageDate      time.Time    `json:"damage_date"`
	Status          DamageStatus `json:"damage_status"`
	FineAmountCents int64        `json:"fine_amount_cents"`
	CreatedOn       time.Time    `json:"created_on"`
}

type MaintenanceRecord struct {
	ID             int64             `json:"id"`
	ItemID         *int64            `json:"item_id,omitempty"`
	Type           MaintenanceType   `json:"maintenance_type"`
	StartDate      time.Time         `json:"start_date"`
	CompletionDate *time.Time        `json:"completion_date,omitempty"`
	CostCents      int64             `json:"cost_cents"`
	Description    string            `json:"description"`
	Technician     string            `json:"technician,omitempty"`
	Status         MaintenanceStatus `json:"status"`
	CreatedOn      time.Time         `json:"created_on"`
}
