package config

import (
	"log"

	"gorm.io/gorm"

	"townhall-docflow/internal/adapters/persistence/models"
	"townhall-docflow/internal/core/domain"
	"townhall-docflow/internal/pkg/password"
)

// Seeder handles database seeding
type Seeder struct {
	db *gorm.DB
}

// NewSeeder creates a new seeder instance
func NewSeeder(db *gorm.DB) *Seeder {
	return &Seeder{db: db}
}

// Run executes all seeders
func (s *Seeder) Run() error {
	log.Println("🌱 Running database seeders...")

	if err := s.seedDepartments(); err != nil {
		return err
	}
	if err := s.seedAdminUser(); err != nil {
		log.Printf("⚠️ Admin seeder skipped: %v", err)
	}

	log.Println("✅ Database seeding completed")
	return nil
}

// seedDepartments seeds the main office and the standing departments.
func (s *Seeder) seedDepartments() error {
	var count int64
	s.db.Model(&models.Department{}).Count(&count)
	if count > 0 {
		return nil
	}

	departments := []models.Department{
		{Name: "Mayor's Office", Code: "MAYOR", Description: "Central administration and document registry", IsMain: true, IsActive: true},
		{Name: "Finance", Code: "FIN", Description: "Budget, accounting and procurement", IsActive: true},
		{Name: "Urban Planning", Code: "URB", Description: "Zoning, permits and city development", IsActive: true},
		{Name: "Education", Code: "EDU", Description: "Schools, kindergartens and youth programs", IsActive: true},
		{Name: "Social Services", Code: "SOC", Description: "Welfare, housing support and community care", IsActive: true},
		{Name: "Public Works", Code: "PWK", Description: "Roads, utilities and municipal maintenance", IsActive: true},
	}

	for i := range departments {
		if err := s.db.Create(&departments[i]).Error; err != nil {
			return err
		}
	}

	log.Printf("✅ Seeded %d departments", len(departments))
	return nil
}

// seedAdminUser seeds default admin user
// This is for development/testing only
// In production, create admin through secure process
func (s *Seeder) seedAdminUser() error {
	// Check if admin already exists
	var count int64
	s.db.Model(&models.User{}).Where("role = ?", domain.RoleAdmin).Count(&count)
	if count > 0 {
		return nil // Admin already exists
	}

	var mainDept models.Department
	if err := s.db.Where("is_main = ?", true).First(&mainDept).Error; err != nil {
		return err
	}

	hashedPassword, err := password.Hash("admin123456")
	if err != nil {
		return err
	}

	admin := &models.User{
		Email:        "admin@townhall.gov",
		FullName:     "System Administrator",
		Password:     hashedPassword,
		Role:         string(domain.RoleAdmin),
		DepartmentID: mainDept.ID,
		IsActive:     true,
	}

	if err := s.db.Create(admin).Error; err != nil {
		return err
	}

	log.Printf("✅ Admin user created: %s", admin.Email)
	return nil
}
