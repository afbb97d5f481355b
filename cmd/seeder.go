package cmd

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/frahmantamala/employee-management/internal"
	"github.com/frahmantamala/employee-management/internal/company"
	companyDatamodel "github.com/frahmantamala/employee-management/internal/core/datamodel/company"
	"github.com/frahmantamala/employee-management/internal/core/events"
	"github.com/frahmantamala/employee-management/internal/department"
	"github.com/frahmantamala/employee-management/internal/employee"
	"github.com/frahmantamala/employee-management/internal/user"
)

const seedPassword = "password"

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with sample data",
	Long:  `Seed the database with sample data for development and testing purposes.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, lg := mustLoad()

		db, sqlDB, err := initDB(cfg.Database, lg)
		if err != nil {
			log.Fatalf("failed to init db: %v", err)
		}
		defer sqlDB.Close()

		bus := events.NewEventBus(lg)
		registerEventHandlers(bus, lg)

		svc := newServices(cfg, db, sqlDB, bus, nil, lg)
		if err := seed(cmd.Context(), db, svc, clearData, os.Stdout); err != nil {
			log.Fatalf("seed failed: %v", err)
		}
		bus.Wait()
	},
}

type seedCompany struct {
	name        string
	departments []seedDepartment
}

type seedDepartment struct {
	name      string
	employees []seedEmployee
}

type seedEmployee struct {
	name, email, phone, designation string
	status                          employee.Status
}

var sampleCompanies = []seedCompany{
	{name: "Acme", departments: []seedDepartment{
		{name: "Engineering", employees: []seedEmployee{
			{"Ada Lovelace", "ada@acme.test", "+12025550101", "Staff Engineer", employee.StatusHired},
			{"Alan Turing", "alan@acme.test", "+12025550102", "Engineer", employee.StatusInterviewScheduled},
		}},
		{name: "Sales", employees: []seedEmployee{
			{"Grace Hopper", "grace@acme.test", "+12025550103", "Account Executive", employee.StatusApplicationReceived},
		}},
	}},
	{name: "Globex", departments: []seedDepartment{
		{name: "Operations", employees: []seedEmployee{
			{"Hank Scorpio", "hank@globex.test", "+12025550104", "Director", employee.StatusHired},
			{"Homer Simpson", "homer@globex.test", "+12025550105", "Safety Inspector", employee.StatusNotAccepted},
		}},
	}},
}

// seed writes sample users and companies through the services, so counters
// and hire dates come out the same way the API would produce them.
func seed(ctx context.Context, db *gorm.DB, svc *services, clear bool, out io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}

	if clear {
		for _, table := range []string{"employees", "departments", "companies"} {
			if err := db.WithContext(ctx).Exec("DELETE FROM " + table).Error; err != nil {
				return fmt.Errorf("clear %s: %w", table, err)
			}
		}
		fmt.Fprintln(out, "Cleared companies, departments and employees")
	}

	accounts := []user.CreateUserDTO{
		{Email: "admin@mail.com", Name: "Admin", Password: seedPassword, Role: string(user.RoleAdmin), IsStaff: true},
		{Email: "manager@mail.com", Name: "Manager", Password: seedPassword, Role: string(user.RoleManager)},
		{Email: "employee@mail.com", Name: "Employee", Password: seedPassword, Role: string(user.RoleEmployee)},
	}
	for _, a := range accounts {
		if _, err := svc.Users.Create(ctx, a); err != nil {
			if internal.HasCode(err, internal.ErrCodeEmailTaken) {
				fmt.Fprintf(out, "%s already exists\n", a.Email)
				continue
			}
			return fmt.Errorf("seed user %s: %w", a.Email, err)
		}
		fmt.Fprintf(out, "Seeded %s user: %s\n", a.Role, a.Email)
	}

	var existing int64
	if err := db.WithContext(ctx).Model(&companyDatamodel.Company{}).Count(&existing).Error; err != nil {
		return fmt.Errorf("count companies: %w", err)
	}
	if existing > 0 {
		fmt.Fprintln(out, "Companies already present; run with --clear to reseed")
		return nil
	}

	for _, sc := range sampleCompanies {
		c, err := svc.Companies.Create(ctx, company.CreateCompanyDTO{Name: sc.name})
		if err != nil {
			return fmt.Errorf("seed company %s: %w", sc.name, err)
		}
		for _, sd := range sc.departments {
			d, err := svc.Departments.Create(ctx, department.CreateDepartmentDTO{Name: sd.name, Company: c.ID})
			if err != nil {
				return fmt.Errorf("seed department %s: %w", sd.name, err)
			}
			for _, se := range sd.employees {
				name, email := se.name, se.email
				if _, err := svc.Employees.Create(ctx, employee.CreateEmployeeDTO{
					Company:       c.ID,
					Department:    d.ID,
					Status:        string(se.status),
					EmployeeName:  &name,
					EmployeeEmail: &email,
					PhoneNumber:   se.phone,
					Address:       "742 Evergreen Terrace",
					Designation:   se.designation,
				}); err != nil {
					return fmt.Errorf("seed employee %s: %w", se.email, err)
				}
			}
		}
		fmt.Fprintf(out, "Seeded company %s\n", sc.name)
	}

	return nil
}
