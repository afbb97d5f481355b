// Package testdb opens an in-memory sqlite database with every table
// migrated. It is only imported from tests.
package testdb

import (
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	companyDatamodel "github.com/frahmantamala/employee-management/internal/core/datamodel/company"
	departmentDatamodel "github.com/frahmantamala/employee-management/internal/core/datamodel/department"
	employeeDatamodel "github.com/frahmantamala/employee-management/internal/core/datamodel/employee"
	userDatamodel "github.com/frahmantamala/employee-management/internal/core/datamodel/user"
)

func Open() (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	// every pooled connection to :memory: would get its own empty database
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(
		&userDatamodel.User{},
		&companyDatamodel.Company{},
		&departmentDatamodel.Department{},
		&employeeDatamodel.Employee{},
	); err != nil {
		return nil, err
	}
	return db, nil
}
