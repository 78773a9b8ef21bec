package handler

import (
	"github.com/deppfellow/gocrud/internal/model"
)

type CreateUserRequest struct {
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"omitempty,min=8"`
}

func (r *CreateUserRequest) Validate() error { return validate.Struct(r) }

func (r *CreateUserRequest) Apply(u *model.User) {
	u.Email = r.Email
	u.Password = r.Password
}

// UpdateUserRequest changes only the fields present in the body.
type UpdateUserRequest struct {
	IDRequest
	Email    *string `json:"email" validate:"omitnil,email,max=255"`
	Password *string `json:"password" validate:"omitnil,min=8"`
}

func (r *UpdateUserRequest) Validate() error { return validate.Struct(r) }

func (r *UpdateUserRequest) Apply(u *model.User) {
	if r.Email != nil {
		u.Email = *r.Email
	}
	if r.Password != nil {
		u.Password = *r.Password
	}
}

type UserHandler = ResourceHandler[model.User, *CreateUserRequest, *UpdateUserRequest]
