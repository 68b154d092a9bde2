package service

import (
	"go-pos-backend/internal/model"
	"go-pos-backend/internal/repository"
	"go-pos-backend/pkg/validator"

	"github.com/google/uuid"
)

type CustomerService interface {
	Create(req *model.Customer, userID string) error
	Update(id uuid.UUID, req *model.Customer, userID string) (*model.Customer, error)
	GetAll() ([]model.Customer, error)
	GetByID(id uuid.UUID) (*model.Customer, error)
}

type customerService struct {
	customerRepo repository.CustomerRepository
}

func NewCustomerService(customerRepo repository.CustomerRepository) CustomerService {
	return &customerService{customerRepo: customerRepo}
}

func (s *customerService) Create(req *model.Customer, userID string) error {
	if errs := validator.ValidateStruct(req); len(errs) > 0 {
		firstErr := errs[0]
		return validationError("field '%s' failed on tag '%s'", firstErr.FailedField, firstErr.Tag)
	}
	if req.CreditLimit.IsNegative() {
		return validationError("credit limit cannot be negative")
	}

	req.ID = uuid.New()
	req.CreatedBy = userID
	req.UpdatedBy = userID
	return s.customerRepo.Create(req)
}

func (s *customerService) Update(id uuid.UUID, req *model.Customer, userID string) (*model.Customer, error) {
	existing, err := s.customerRepo.FindByID(id)
	if err != nil {
		if err == repository.ErrNotFound {
			return nil, ErrCustomerNotFound
		}
		return nil, err
	}

	existing.Name = req.Name
	existing.PhoneNumber = req.PhoneNumber
	existing.Email = req.Email
	existing.Address = req.Address
	existing.CreditLimit = req.CreditLimit
	existing.IsActive = req.IsActive
	existing.UpdatedBy = userID

	if err := s.customerRepo.Update(existing); err != nil {
		return nil, err
	}
	return existing, nil
}

func (s *customerService) GetAll() ([]model.Customer, error) {
	return s.customerRepo.FindAll()
}

func (s *customerService) GetByID(id uuid.UUID) (*model.Customer, error) {
	customer, err := s.customerRepo.FindByID(id)
	if err == repository.ErrNotFound {
		return nil, ErrCustomerNotFound
	}
	return customer, err
}
