package domain

import (
	"context"

	"github.com/policywaylabs/policyway/pkg/db/pagination"
)

type CreateCustomerRequest struct {
	Name    string `validate:"required"`
	Email   string `validate:"required,email"`
	Phone   string `validate:"omitempty,min=7"`
	Address string
}

type CreatePartyRequest struct {
	Role        Role   `validate:"required"`
	Name        string `validate:"required"`
	Email       string `validate:"required,email"`
	Phone       string
	PAN         string
	BankAccount string
	ParentID    string
}

type ListResponse[T any] struct {
	Items    []*T
	PageInfo pagination.PageInfo
}

type Service interface {
	CreateCustomer(ctx context.Context, req CreateCustomerRequest) (*Customer, error)
	GetCustomer(ctx context.Context, id string) (*Customer, error)
	ListCustomers(ctx context.Context, page pagination.Pagination) (*ListResponse[Customer], error)

	CreateParty(ctx context.Context, req CreatePartyRequest) (*Party, error)
	GetParty(ctx context.Context, id string) (*Party, error)
	ListParties(ctx context.Context, page pagination.Pagination) (*ListResponse[Party], error)
}
