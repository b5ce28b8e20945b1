package passengers

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Domenick1991/flightops/internal/domain"
	"github.com/Domenick1991/flightops/internal/repository"
	"github.com/Domenick1991/flightops/internal/storage"
)

const (
	msgPassengerNotFound = "Passenger not found"
	msgEmailTaken        = "Email already exists"
	msgPhoneTaken        = "Phone number already exists"
)

type PassengerUseCase interface {
	GetByID(ctx context.Context, id int64) (*domain.Passenger, error)
	BookingCount(ctx context.Context, id int64) (int, error)
	Create(ctx context.Context, input CreatePassengerInput) (*domain.Passenger, error)
	Update(ctx context.Context, id int64, input UpdatePassengerInput) (*domain.Passenger, error)
	Delete(ctx context.Context, id int64) error
}

type CreatePassengerInput struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
}

// UpdatePassengerInput carries the fields to change. Nil fields are left as they are.
type UpdatePassengerInput struct {
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Email     *string `json:"email"`
	Phone     *string `json:"phone"`
}

type PassengerService struct {
	repo repository.PassengerRepository
}

func NewPassengerService(repo repository.PassengerRepository) *PassengerService {
	return &PassengerService{repo: repo}
}

func (s *PassengerService) GetByID(ctx context.Context, id int64) (*domain.Passenger, error) {
	p, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, domain.NotFoundError(msgPassengerNotFound)
	}
	if err != nil {
		return nil, domain.FatalError("Failed to load passenger", err)
	}
	return p, nil
}

// BookingCount returns the number of active bookings held by the passenger.
func (s *PassengerService) BookingCount(ctx context.Context, id int64) (int, error) {
	if _, err := s.GetByID(ctx, id); err != nil {
		return 0, err
	}
	count, err := s.repo.BookingCount(ctx, id)
	if err != nil {
		return 0, domain.FatalError("Failed to count bookings", err)
	}
	return count, nil
}

func (s *PassengerService) Create(ctx context.Context, input CreatePassengerInput) (*domain.Passenger, error) {
	p := &domain.Passenger{
		FirstName: strings.TrimSpace(input.FirstName),
		LastName:  strings.TrimSpace(input.LastName),
	}
	required := []struct {
		name  string
		value string
	}{
		{"first_name", p.FirstName},
		{"last_name", p.LastName},
		{"email", strings.TrimSpace(input.Email)},
		{"phone", strings.TrimSpace(input.Phone)},
	}
	for _, f := range required {
		if f.value == "" {
			return nil, domain.ValidationError("Missing or empty field: " + f.name)
		}
	}

	var err error
	if p.Email, err = domain.NormalizeEmail(input.Email); err != nil {
		return nil, err
	}
	if p.Phone, err = domain.NormalizePhone(input.Phone); err != nil {
		return nil, err
	}

	taken, err := s.repo.EmailExists(ctx, p.Email)
	if err != nil {
		return nil, domain.FatalError("Failed to create passenger", err)
	}
	if taken {
		return nil, domain.ConflictError(msgEmailTaken)
	}
	taken, err = s.repo.PhoneExists(ctx, p.Phone)
	if err != nil {
		return nil, domain.FatalError("Failed to create passenger", err)
	}
	if taken {
		return nil, domain.ConflictError(msgPhoneTaken)
	}

	if err := s.repo.Create(ctx, p); err != nil {
		if derr := uniqueError(err); derr != nil {
			return nil, derr
		}
		return nil, domain.FatalError("Failed to create passenger", err)
	}
	return p, nil
}

func (s *PassengerService) Update(ctx context.Context, id int64, input UpdatePassengerInput) (*domain.Passenger, error) {
	if input == (UpdatePassengerInput{}) {
		return nil, domain.ValidationError("No fields to update")
	}

	p, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.FirstName != nil {
		if p.FirstName = strings.TrimSpace(*input.FirstName); p.FirstName == "" {
			return nil, domain.ValidationError("First name cannot be empty")
		}
	}
	if input.LastName != nil {
		if p.LastName = strings.TrimSpace(*input.LastName); p.LastName == "" {
			return nil, domain.ValidationError("Last name cannot be empty")
		}
	}
	if input.Email != nil {
		if p.Email, err = domain.NormalizeEmail(*input.Email); err != nil {
			return nil, err
		}
		taken, err := s.repo.EmailTakenByOther(ctx, p.Email, id)
		if err != nil {
			return nil, domain.FatalError("Failed to update passenger", err)
		}
		if taken {
			return nil, domain.ConflictError(msgEmailTaken)
		}
	}
	if input.Phone != nil {
		if p.Phone, err = domain.NormalizePhone(*input.Phone); err != nil {
			return nil, err
		}
		taken, err := s.repo.PhoneTakenByOther(ctx, p.Phone, id)
		if err != nil {
			return nil, domain.FatalError("Failed to update passenger", err)
		}
		if taken {
			return nil, domain.ConflictError(msgPhoneTaken)
		}
	}

	if err := s.repo.Update(ctx, p); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, domain.NotFoundError(msgPassengerNotFound)
		}
		if derr := uniqueError(err); derr != nil {
			return nil, derr
		}
		return nil, domain.FatalError("Failed to update passenger", err)
	}
	return p, nil
}

// Delete removes a passenger that holds no active bookings.
func (s *PassengerService) Delete(ctx context.Context, id int64) error {
	count, err := s.BookingCount(ctx, id)
	if err != nil {
		return err
	}
	if count > 0 {
		return domain.ConflictError(fmt.Sprintf("Cannot delete passenger with %d active bookings. Cancel bookings first.", count))
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.NotFoundError(msgPassengerNotFound)
		}
		return domain.FatalError("Failed to delete passenger", err)
	}
	return nil
}

func uniqueError(err error) error {
	switch storage.Classify(err) {
	case storage.ViolationEmailTaken:
		return domain.ConflictError(msgEmailTaken)
	case storage.ViolationPhoneTaken:
		return domain.ConflictError(msgPhoneTaken)
	}
	return nil
}

var _ PassengerUseCase = (*PassengerService)(nil)
