package service

import (
	"encoding/json"
	"time"

	"go-pos-backend/internal/model"
	"go-pos-backend/internal/repository"
	"go-pos-backend/internal/ws"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type OpenShiftRequest struct {
	OpeningCash decimal.Decimal `json:"opening_cash"`
	Note        string          `json:"note"`
}

type CloseShiftRequest struct {
	ClosingCash decimal.Decimal `json:"closing_cash"`
	Note        string          `json:"note"`
}

type ShiftService interface {
	Open(operatorID uuid.UUID, req OpenShiftRequest, actorID string) (*model.Shift, error)
	Close(shiftID, operatorID uuid.UUID, req CloseShiftRequest, actorID string) (*model.Shift, error)
	GetOpenByUser(operatorID uuid.UUID) (*model.Shift, error)
	GetByID(id uuid.UUID) (*model.ShiftResponse, error)
	List(status model.ShiftStatus) ([]model.ShiftResponse, error)
}

type shiftService struct {
	shiftRepo repository.ShiftRepository
	wsHub     *ws.Hub
	now       func() time.Time
}

func NewShiftService(shiftRepo repository.ShiftRepository, hub *ws.Hub) ShiftService {
	return &shiftService{
		shiftRepo: shiftRepo,
		wsHub:     hub,
		now:       time.Now,
	}
}

func (s *shiftService) Open(operatorID uuid.UUID, req OpenShiftRequest, actorID string) (*model.Shift, error) {
	// One open shift per operator
	existing, err := s.shiftRepo.FindOpenByUser(operatorID)
	if err != nil && err != repository.ErrNotFound {
		return nil, err
	}
	if existing != nil {
		return nil, ErrShiftAlreadyOpen
	}
	if req.OpeningCash.IsNegative() {
		return nil, validationError("opening cash cannot be negative")
	}

	shift := &model.Shift{
		Status:      model.ShiftOpen,
		OpenedByID:  operatorID,
		OpenedAt:    s.now(),
		OpeningCash: req.OpeningCash,
		Note:        req.Note,
	}
	shift.CreatedBy = actorID
	shift.UpdatedBy = actorID

	if err := s.shiftRepo.Create(shift); err != nil {
		return nil, err
	}

	s.broadcast("shift_opened", shift)
	return shift, nil
}

func (s *shiftService) Close(shiftID, operatorID uuid.UUID, req CloseShiftRequest, actorID string) (*model.Shift, error) {
	shift, err := s.shiftRepo.FindByID(shiftID)
	if err != nil {
		if err == repository.ErrNotFound {
			return nil, validationError("shift %s not found", shiftID)
		}
		return nil, err
	}
	if !shift.IsOpen() {
		return nil, ErrShiftAlreadyClosed
	}
	if req.ClosingCash.IsNegative() {
		return nil, validationError("closing cash cannot be negative")
	}

	closedAt := s.now()
	shift.Status = model.ShiftClosed
	shift.ClosedByID = &operatorID
	shift.ClosedAt = &closedAt
	shift.ClosingCash = req.ClosingCash
	if req.Note != "" {
		shift.Note = req.Note
	}
	shift.UpdatedBy = actorID

	if err := s.shiftRepo.Update(shift); err != nil {
		return nil, err
	}

	s.broadcast("shift_closed", shift)
	return shift, nil
}

func (s *shiftService) GetOpenByUser(operatorID uuid.UUID) (*model.Shift, error) {
	shift, err := s.shiftRepo.FindOpenByUser(operatorID)
	if err == repository.ErrNotFound {
		return nil, ErrShiftNotOpen
	}
	return shift, err
}

func (s *shiftService) GetByID(id uuid.UUID) (*model.ShiftResponse, error) {
	shift, err := s.shiftRepo.FindByID(id)
	if err != nil {
		if err == repository.ErrNotFound {
			return nil, validationError("shift %s not found", id)
		}
		return nil, err
	}
	resp := shift.ToResponse()
	return &resp, nil
}

func (s *shiftService) List(status model.ShiftStatus) ([]model.ShiftResponse, error) {
	shifts, err := s.shiftRepo.FindAll(status)
	if err != nil {
		return nil, err
	}
	responses := make([]model.ShiftResponse, len(shifts))
	for i := range shifts {
		responses[i] = shifts[i].ToResponse()
	}
	return responses, nil
}

func (s *shiftService) broadcast(action string, shift *model.Shift) {
	if s.wsHub == nil {
		return
	}
	go func() {
		payload := map[string]interface{}{
			"type":   "shift_update",
			"action": action,
			"shift":  shift.ToResponse(),
		}
		msg, _ := json.Marshal(payload)
		s.wsHub.Broadcast <- msg
	}()
}
