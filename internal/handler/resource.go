package handler

import (
	"github.com/deppfellow/gocrud/internal/query"
	"github.com/deppfellow/gocrud/internal/server"
	"github.com/deppfellow/gocrud/internal/service"
	"github.com/deppfellow/gocrud/internal/validation"
	"github.com/labstack/echo/v4"
)

// Payload is a create or update body that knows how to apply itself to an
// entity.
type Payload[T any] interface {
	validation.Validatable
	Apply(entity *T)
}

// UpdatePayload also carries the id from the path.
type UpdatePayload[T any] interface {
	Payload[T]
	ResourceID() int64
}

type IDRequest struct {
	ID int64 `param:"id" validate:"required,min=1"`
}

func (r *IDRequest) Validate() error   { return validate.Struct(r) }
func (r *IDRequest) ResourceID() int64 { return r.ID }

// ListRequest binds nothing; the filter is read from the raw query so
// bracketed keys like where[email] survive.
type ListRequest struct{}

func (*ListRequest) Validate() error { return nil }

// ResourceHandler serves list, create, retrieve, update and delete for one
// entity type.
type ResourceHandler[T any, C Payload[T], U UpdatePayload[T]] struct {
	Handler
	service *service.ResourceService[T]
}

func NewResourceHandler[T any, C Payload[T], U UpdatePayload[T]](s *server.Server, svc *service.ResourceService[T]) *ResourceHandler[T, C, U] {
	return &ResourceHandler[T, C, U]{Handler: NewHandler(s), service: svc}
}

func (h *ResourceHandler[T, C, U]) List(c echo.Context, _ *ListRequest) (query.Result[T], error) {
	return h.service.List(c.Request().Context(), c.QueryParams())
}

func (h *ResourceHandler[T, C, U]) Create(c echo.Context, req C) (*T, error) {
	entity := new(T)
	req.Apply(entity)
	return h.service.Create(c.Request().Context(), entity)
}

func (h *ResourceHandler[T, C, U]) Retrieve(c echo.Context, req *IDRequest) (*T, error) {
	return h.service.Retrieve(c.Request().Context(), req.ID)
}

func (h *ResourceHandler[T, C, U]) Update(c echo.Context, req U) (*T, error) {
	return h.service.Update(c.Request().Context(), req.ResourceID(), func(entity *T) error {
		req.Apply(entity)
		return nil
	})
}

func (h *ResourceHandler[T, C, U]) Delete(c echo.Context, req *IDRequest) (*T, error) {
	return h.service.Delete(c.Request().Context(), req.ID)
}
