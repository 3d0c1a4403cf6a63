package request

type CreateInvitation struct {
	Email string `json:"email" validate:"required,email"`
	Role  string `json:"role" validate:"required,oneof=readonly user manager admin"`
}

type RedeemInvitation struct {
	Token       string `json:"token" validate:"required"`
	DisplayName string `json:"display_name" validate:"max=128"`
	Password    string `json:"password" validate:"omitempty,min=12"`
}
