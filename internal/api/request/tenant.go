package request

import "encoding/json"

type UpdateTenantSettings struct {
	Settings json.RawMessage `json:"settings" validate:"required"`
}

type UpdateTenantStatus struct {
	Status string `json:"status" validate:"required,oneof=trial active suspended expired"`
}

type UpdateCustomDomain struct {
	CustomDomain *string `json:"custom_domain" validate:"omitempty,fqdn"`
}

type ChangePlan struct {
	PlanID string `json:"plan_id" validate:"required"`
}
