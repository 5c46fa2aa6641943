package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"craftopia/internal/auth"
	"craftopia/internal/config"
	"craftopia/internal/db"
	"craftopia/internal/model"
	"craftopia/internal/repository"
)

// defaultCategory is a catalog section created on first seed.
type defaultCategory struct {
	Name        string
	Description string
	Icon        string
}

var defaultCategories = []defaultCategory{
	{Name: "Wall Art", Description: "Paintings, prints and hand-woven wall hangings", Icon: "frame"},
	{Name: "Lighting", Description: "Handmade lamps, lanterns and candle holders", Icon: "lamp"},
	{Name: "Ceramics", Description: "Vases, bowls and planters thrown by hand", Icon: "vase"},
	{Name: "Textiles", Description: "Cushions, throws and rugs", Icon: "rug"},
	{Name: "Woodwork", Description: "Carved and turned wooden pieces", Icon: "tree"},
}

func main() {
	logger, err := zap.NewDevelopment()
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger init: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	cfg := config.Load()
	if cfg.MySQLDSN == "" {
		logger.Fatal("MYSQL_DSN is required")
	}
	if cfg.SeedAdminEmail == "" || cfg.SeedAdminPassword == "" {
		logger.Fatal("SEED_ADMIN_EMAIL and SEED_ADMIN_PASSWORD are required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	dbClient, err := db.NewMySQL(ctx, cfg.MySQLDSN, db.Options{})
	if err != nil {
		logger.Fatal("connect database", zap.Error(err))
	}
	defer func() { _ = dbClient.Close() }()
	logger.Info("connected to database")

	if err := dbClient.Migrate(); err != nil {
		logger.Fatal("migrate database", zap.Error(err))
	}

	userRepo := repository.NewUserRepository(dbClient.DB)
	categoryRepo := repository.NewCategoryRepository(dbClient.DB)

	admin, created, err := seedSuperAdmin(ctx, userRepo, cfg.SeedAdminEmail, cfg.SeedAdminPassword)
	if err != nil {
		logger.Fatal("seed super admin", zap.Error(err))
	}
	if created {
		logger.Info("super admin created", zap.String("email", admin.Email), zap.String("name", admin.FullName()))
	} else {
		logger.Info("super admin already present, skipping", zap.String("name", admin.FullName()))
	}

	n, err := seedCategories(ctx, categoryRepo, admin.ID)
	if err != nil {
		logger.Fatal("seed categories", zap.Error(err))
	}
	logger.Info("seed completed", zap.Int("categoriesCreated", n))
}

// seedSuperAdmin returns the existing super admin, or creates one from the
// given credentials when none exists.
func seedSuperAdmin(ctx context.Context, repo repository.UserRepository, email, password string) (*model.User, bool, error) {
	count, err := repo.CountByRole(ctx, model.RoleSuperAdmin)
	if err != nil {
		return nil, false, fmt.Errorf("count super admins: %w", err)
	}
	if count > 0 {
		admins, _, err := repo.List(ctx, repository.UserFilter{
			Role: model.RoleSuperAdmin,
			Page: repository.Page{Limit: 1},
		})
		if err != nil {
			return nil, false, fmt.Errorf("load super admin: %w", err)
		}
		if len(admins) > 0 {
			return &admins[0], false, nil
		}
	}

	existing, err := repo.FindByEmail(ctx, model.NormalizeEmail(email))
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, fmt.Errorf("lookup %s: %w", email, err)
	}
	if existing != nil {
		existing.Role = model.RoleSuperAdmin
		existing.IsActive = true
		if err := repo.Update(ctx, existing); err != nil {
			return nil, false, fmt.Errorf("promote %s: %w", email, err)
		}
		return existing, true, nil
	}

	hashed, err := auth.HashPassword(password)
	if err != nil {
		return nil, false, err
	}
	admin, err := model.NewUser(email, hashed, "Super", "Admin", "")
	if err != nil {
		return nil, false, err
	}
	admin.Role = model.RoleSuperAdmin
	if err := repo.Create(ctx, admin); err != nil {
		return nil, false, fmt.Errorf("create super admin: %w", err)
	}
	return admin, true, nil
}

// seedCategories creates the default categories that are missing.
func seedCategories(ctx context.Context, repo repository.CategoryRepository, createdBy uuid.UUID) (int, error) {
	created := 0
	for _, def := range defaultCategories {
		_, err := repo.FindByName(ctx, def.Name)
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return created, fmt.Errorf("lookup category %q: %w", def.Name, err)
		}

		category, err := model.NewCategory(def.Name, def.Description, def.Icon, true, createdBy)
		if err != nil {
			return created, err
		}
		if err := repo.Create(ctx, category); err != nil {
			return created, fmt.Errorf("create category %q: %w", def.Name, err)
		}
		created++
	}
	return created, nil
}
