package request

type Signup struct {
	TenantName    string `json:"tenant_name" validate:"required,max=128"`
	Subdomain     string `json:"subdomain" validate:"required,slug"`
	BillingEmail  string `json:"billing_email" validate:"required,email"`
	AdminEmail    string `json:"admin_email" validate:"required,email"`
	AdminName     string `json:"admin_name" validate:"required,max=128"`
	AdminPassword string `json:"admin_password" validate:"required,min=12"`
	PlanID        string `json:"plan_id"`
}
