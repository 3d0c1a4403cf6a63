package request

type UpdateMemberRole struct {
	Role string `json:"role" validate:"required,oneof=readonly user manager admin"`
}
