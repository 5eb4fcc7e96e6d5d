package mongo

import (
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/recordhub/records-system/internal/core/domain"
)

type EmployeeRepository struct {
	collection[domain.Employee]
}

func NewEmployeeRepository(db *mongo.Database) *EmployeeRepository {
	return &EmployeeRepository{collection[domain.Employee]{
		col:      db.Collection(ColEmployees),
		idOf:     func(e *domain.Employee) *string { return &e.ID },
		search:   []string{"personalDetails.firstName", "personalDetails.lastName", "employeeId"},
		seqField: "employeeId",
	}}
}
