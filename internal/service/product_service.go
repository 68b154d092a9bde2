package service

import (
	"fmt"

	"go-pos-backend/internal/model"
	"go-pos-backend/internal/repository"
	"go-pos-backend/pkg/validator"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type ProductService interface {
	Create(req *model.Product, openingStock decimal.Decimal, userID string) error
	Update(id uuid.UUID, req *model.Product, userID string) (*model.Product, error)
	Delete(id uuid.UUID, userID string) error
	GetAll() ([]model.Product, error)
	GetByID(id uuid.UUID) (*model.Product, error)
}

type productService struct {
	productRepo repository.ProductRepository
	stock       StockService
}

func NewProductService(productRepo repository.ProductRepository, stock StockService) ProductService {
	return &productService{
		productRepo: productRepo,
		stock:       stock,
	}
}

func (s *productService) Create(req *model.Product, openingStock decimal.Decimal, userID string) error {
	// 1. Validasi Struct Dasar
	if errs := validator.ValidateStruct(req); len(errs) > 0 {
		firstErr := errs[0]
		return validationError("field '%s' failed on tag '%s'", firstErr.FailedField, firstErr.Tag)
	}
	if openingStock.IsNegative() {
		return validationError("opening stock cannot be negative")
	}

	// 2. Cek Duplikasi SKU
	existing, _ := s.productRepo.FindBySKU(req.SKU)
	if existing != nil && existing.ID != uuid.Nil {
		return validationError("SKU %s already exists", req.SKU)
	}

	// 3. Set Audit Fields
	req.ID = uuid.New()
	req.CreatedBy = userID
	req.UpdatedBy = userID
	req.CreatedByUserID = &userID
	req.UpdatedByUserID = &userID
	// Stock quantities are owned by the ledger; the create starts from zero
	// and the opening movement below establishes the balance.
	req.StockQuantity = decimal.Zero
	req.OpeningStock = openingStock

	// 4. Simpan ke Database
	if err := s.productRepo.Create(req); err != nil {
		return err
	}

	// 5. Opening stock goes through the ledger like any other movement
	if req.TrackStock && openingStock.IsPositive() {
		productID := req.ID
		if _, err := s.stock.RecordMovement(MovementInput{
			ProductID:     productID,
			Direction:     model.DirectionIn,
			MovementType:  model.MovementOpening,
			Quantity:      openingStock,
			UnitCost:      req.UnitCost,
			ReferenceType: model.RefOpeningStock,
			ReferenceID:   &productID,
			Note:          "opening stock",
		}, userID); err != nil {
			return fmt.Errorf("record opening stock: %w", err)
		}
	}

	return nil
}

func (s *productService) Update(id uuid.UUID, req *model.Product, userID string) (*model.Product, error) {
	existing, err := s.productRepo.FindByID(id)
	if err != nil {
		if err == repository.ErrNotFound {
			return nil, ErrProductNotFound
		}
		return nil, err
	}

	// Descriptive and configuration fields only. Stock quantity changes go
	// through the ledger as Adjustment movements, never through here.
	existing.Name = req.Name
	existing.SKU = req.SKU
	existing.Barcode = req.Barcode
	existing.Unit = req.Unit
	existing.UnitCost = req.UnitCost
	existing.SellingPrice = req.SellingPrice
	existing.VatRate = req.VatRate
	existing.TrackStock = req.TrackStock
	existing.AllowNegativeStock = req.AllowNegativeStock
	existing.ReorderLevel = req.ReorderLevel
	existing.MaximumStock = req.MaximumStock
	existing.UpdatedBy = userID
	existing.UpdatedByUserID = &userID

	if err := s.productRepo.Update(existing); err != nil {
		return nil, err
	}
	return existing, nil
}

// Delete retires a product from the catalog. The soft delete keeps ledger
// history readable; the SKU stays reserved until hard-cleaned from the DB.
func (s *productService) Delete(id uuid.UUID, userID string) error {
	if _, err := s.productRepo.FindByID(id); err != nil {
		if err == repository.ErrNotFound {
			return ErrProductNotFound
		}
		return err
	}
	return s.productRepo.Delete(id, userID)
}

func (s *productService) GetAll() ([]model.Product, error) {
	return s.productRepo.FindAll()
}

func (s *productService) GetByID(id uuid.UUID) (*model.Product, error) {
	product, err := s.productRepo.FindByID(id)
	if err == repository.ErrNotFound {
		return nil, ErrProductNotFound
	}
	return product, err
}
