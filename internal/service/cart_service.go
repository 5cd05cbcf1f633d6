package service

import (
	"context"
	"fmt"
	"time"

	"elegance/internal/model"
	"elegance/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// cartService implements CartService.
type cartService struct {
	cartRepo    repository.CartRepository
	perfumeRepo repository.PerfumeRepository
	logger      zerolog.Logger
}

// NewCartService creates a new cart service.
func NewCartService(cartRepo repository.CartRepository, perfumeRepo repository.PerfumeRepository, logger zerolog.Logger) CartService {
	return &cartService{
		cartRepo:    cartRepo,
		perfumeRepo: perfumeRepo,
		logger:      logger.With().Str("service", "cart").Logger(),
	}
}

// GetCart retrieves the user's cart, creating it on first access.
func (s *cartService) GetCart(ctx context.Context, userID uuid.UUID) (*model.CartView, error) {
	cart, err := s.getOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.view(ctx, cart)
}

// AddItem adds a perfume to the cart after checking it exists, is active and
// has enough stock for the requested quantity.
func (s *cartService) AddItem(ctx context.Context, userID uuid.UUID, req *model.AddCartItemRequest) (*model.CartView, error) {
	if req == nil || req.PerfumeID == uuid.Nil {
		return nil, model.NewValidationError("perfumeId is required")
	}
	quantity := req.Quantity
	if quantity == 0 {
		quantity = 1
	}
	if quantity < 1 {
		return nil, model.NewValidationError("quantity must be at least 1")
	}

	perfume, err := s.perfumeRepo.GetByID(ctx, req.PerfumeID)
	if err != nil {
		return nil, fmt.Errorf("failed to get perfume: %w", err)
	}
	if perfume == nil || !perfume.IsActive {
		return nil, model.ErrPerfumeNotFound
	}
	if perfume.Stock < quantity {
		return nil, model.ErrInsufficientStock
	}

	cart, err := s.getOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}

	if err := s.cartRepo.AddItem(ctx, cart.ID, req.PerfumeID, quantity); err != nil {
		return nil, err
	}

	return s.refresh(ctx, userID)
}

// UpdateItem replaces the quantity of a cart item.
func (s *cartService) UpdateItem(ctx context.Context, userID, perfumeID uuid.UUID, quantity int) (*model.CartView, error) {
	if quantity < 1 {
		return nil, model.NewValidationError("quantity must be at least 1")
	}

	cart, err := s.getOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}

	if err := s.cartRepo.SetItemQuantity(ctx, cart.ID, perfumeID, quantity); err != nil {
		return nil, err
	}

	return s.refresh(ctx, userID)
}

// RemoveItem removes a perfume from the cart.
func (s *cartService) RemoveItem(ctx context.Context, userID, perfumeID uuid.UUID) (*model.CartView, error) {
	cart, err := s.getOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}

	if err := s.cartRepo.RemoveItem(ctx, cart.ID, perfumeID); err != nil {
		return nil, err
	}

	return s.refresh(ctx, userID)
}

// Clear empties the cart.
func (s *cartService) Clear(ctx context.Context, userID uuid.UUID) error {
	cart, err := s.getOrCreate(ctx, userID)
	if err != nil {
		return err
	}
	return s.cartRepo.Clear(ctx, cart.ID)
}

func (s *cartService) getOrCreate(ctx context.Context, userID uuid.UUID) (*model.Cart, error) {
	cart, err := s.cartRepo.GetByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get cart: %w", err)
	}
	if cart != nil {
		return cart, nil
	}

	now := time.Now()
	cart = &model.Cart{
		ID:        uuid.New(),
		UserID:    userID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.cartRepo.Create(ctx, cart); err != nil {
		return nil, fmt.Errorf("failed to create cart: %w", err)
	}

	s.logger.Debug().Str("user_id", userID.String()).Msg("cart created")

	return cart, nil
}

func (s *cartService) refresh(ctx context.Context, userID uuid.UUID) (*model.CartView, error) {
	cart, err := s.cartRepo.GetByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload cart: %w", err)
	}
	if cart == nil {
		return nil, fmt.Errorf("cart disappeared during update")
	}
	return s.view(ctx, cart)
}

// view populates the cart response with current perfume records.
func (s *cartService) view(ctx context.Context, cart *model.Cart) (*model.CartView, error) {
	ids := make([]uuid.UUID, len(cart.Items))
	for i, item := range cart.Items {
		ids[i] = item.PerfumeID
	}

	perfumes, err := s.perfumeRepo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load cart perfumes: %w", err)
	}

	return &model.CartView{
		ID:       cart.ID,
		Items:    cart.Items,
		Perfumes: perfumes,
	}, nil
}
