package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/Diyorbek0204/dern-support/internal/model"
	"github.com/Diyorbek0204/dern-support/internal/utils"
)

// SetupService reports and performs first-run initialisation.
type SetupService struct {
	users      UserStore
	components ComponentStore
	bcryptCost int
	logger     *slog.Logger
}

func NewSetupService(users UserStore, components ComponentStore, bcryptCost int, logger *slog.Logger) *SetupService {
	if logger == nil {
		logger = slog.Default()
	}
	return &SetupService{users: users, components: components, bcryptCost: bcryptCost, logger: logger}
}

// CheckSetup reports whether any account exists.
func (s *SetupService) CheckSetup(ctx context.Context) (bool, error) {
	n, err := s.users.Count(ctx)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

type seedUser struct {
	first, last, email, phone string
	role                      model.Role
}

var defaultUsers = []seedUser{
	{"Admin", "User", "admin@dernsupport.uz", "+998901234567", model.RoleManager},
	{"Master", "User", "master@dernsupport.uz", "+998901234568", model.RoleMaster},
	{"Regular", "User", "user@dernsupport.uz", "+998901234569", model.RoleUser},
	{"Test", "Master", "master2@dernsupport.uz", "+998901234570", model.RoleMaster},
}

var defaultComponents = []model.Component{
	{Title: "RAM 8GB DDR4", Description: "Operativ xotira 8GB DDR4 2666MHz", Price: 350000, InStock: 10},
	{Title: "SSD 256GB", Description: "Qattiq disk SSD 256GB SATA", Price: 450000, InStock: 8},
	{Title: "Protsessor Intel i5", Description: "Intel Core i5 10400F 2.9GHz", Price: 1200000, InStock: 5},
	{Title: "Videokarta GTX 1650", Description: "NVIDIA GeForce GTX 1650 4GB", Price: 1800000, InStock: 3},
	{Title: "Motherboard B450", Description: "AMD B450 chipset motherboard", Price: 800000, InStock: 6},
	{Title: "Power Supply 500W", Description: "500W 80+ Bronze power supply", Price: 400000, InStock: 12},
}

// SeedDefaults inserts the default accounts and components when the users
// table is empty. It returns false when there was nothing to do.
func (s *SetupService) SeedDefaults(ctx context.Context) (bool, error) {
	done, err := s.CheckSetup(ctx)
	if err != nil || done {
		return false, err
	}
	hash, err := utils.HashPassword(DefaultPassword, s.bcryptCost)
	if err != nil {
		return false, err
	}
	now := time.Now().UTC()
	for _, su := range defaultUsers {
		u := &model.User{
			FirstName:    su.first,
			LastName:     su.last,
			Email:        su.email,
			Phone:        su.phone,
			PasswordHash: hash,
			Role:         su.role,
			PersonType:   model.PersonIndividual,
			CreatedAt:    now,
		}
		if err := s.users.Create(ctx, u); err != nil {
			return false, err
		}
	}
	for _, dc := range defaultComponents {
		c := dc
		c.CreatedAt = now
		if err := s.components.Create(ctx, &c); err != nil {
			return false, err
		}
	}
	s.logger.Info("seeded default data", "users", len(defaultUsers), "components", len(defaultComponents))
	return true, nil
}
