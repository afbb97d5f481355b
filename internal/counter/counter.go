// Package counter keeps the derived counters on companies and departments in
// line with the rows they count. Every recount re-derives the value with a
// COUNT(*) against the current state of the transaction; nothing is ever
// incremented.
package counter

import "sort"

type Kind string

const (
	KindCompany    Kind = "company"
	KindDepartment Kind = "department"
)

type Reason string

const (
	ReasonMissingParent Reason = "missing_parent"
	ReasonError         Reason = "error"
)

type Target struct {
	Kind Kind
	ID   int64
}

type Skip struct {
	Target
	Reason Reason
	Err    error
}

// Outcome lists which counters were recounted and which were left stale.
type Outcome struct {
	Applied []Target
	Skipped []Skip
}

func (o Outcome) Clean() bool {
	return len(o.Skipped) == 0
}

func (o *Outcome) merge(other Outcome) {
	o.Applied = append(o.Applied, other.Applied...)
	o.Skipped = append(o.Skipped, other.Skipped...)
}

// Parents is the set of parent rows touched by a child write.
type Parents struct {
	CompanyIDs    []int64
	DepartmentIDs []int64
}

func NewParents() *Parents {
	return &Parents{}
}

// AddEmployee records the parents of an employee row. Called once with the
// old and once with the new placement when an employee moves.
func (p *Parents) AddEmployee(companyID, departmentID int64) *Parents {
	p.CompanyIDs = appendUnique(p.CompanyIDs, companyID)
	p.DepartmentIDs = appendUnique(p.DepartmentIDs, departmentID)
	return p
}

func (p *Parents) AddCompany(companyID int64) *Parents {
	p.CompanyIDs = appendUnique(p.CompanyIDs, companyID)
	return p
}

// sorted returns copies of both id lists in ascending order, the order in
// which row locks are taken.
func (p *Parents) sorted() (companies, departments []int64) {
	companies = append([]int64(nil), p.CompanyIDs...)
	departments = append([]int64(nil), p.DepartmentIDs...)
	sort.Slice(companies, func(i, j int) bool { return companies[i] < companies[j] })
	sort.Slice(departments, func(i, j int) bool { return departments[i] < departments[j] })
	return companies, departments
}

func appendUnique(ids []int64, id int64) []int64 {
	for _, existing := range ids {
		if existing == id {
			return ids
		}
	}
	return append(ids, id)
}

// Locked is the result of locking a set of parents: which rows exist and the
// owning company of each locked department.
type Locked struct {
	Companies         map[int64]bool
	DepartmentCompany map[int64]int64
}

func (l Locked) HasCompany(id int64) bool {
	return l.Companies[id]
}

func (l Locked) HasDepartment(id int64) bool {
	_, ok := l.DepartmentCompany[id]
	return ok
}

// CompanyOf returns the company a locked department belongs to.
func (l Locked) CompanyOf(departmentID int64) (int64, bool) {
	id, ok := l.DepartmentCompany[departmentID]
	return id, ok
}
