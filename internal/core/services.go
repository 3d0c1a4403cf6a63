package core

import "github.com/rs/zerolog"

type Services struct {
	Auth         *AuthService
	Tenant       *TenantService
	User         *UserService
	Membership   *MembershipService
	Provisioning *ProvisioningService
	Invitation   *InvitationService
	Usage        *UsageService
	Plan         *PlanService
	Dashboard    *DashboardService
}

func NewServices(db DB, logger zerolog.Logger, jwtSecret, jwtIssuer string) *Services {
	usage := NewUsageService(db, logger)
	plan := NewPlanService(db)
	return &Services{
		Auth:         NewAuthService(db, jwtSecret, jwtIssuer),
		Tenant:       NewTenantService(db),
		User:         NewUserService(db),
		Membership:   NewMembershipService(db),
		Provisioning: NewProvisioningService(db, plan),
		Invitation:   NewInvitationService(db, usage),
		Usage:        usage,
		Plan:         plan,
		Dashboard:    NewDashboardService(db, usage),
	}
}
