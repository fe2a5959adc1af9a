package inmemdb

import (
	"sync"

	"github.com/trezcool/dropwatch/core/student"
)

type (
	DB struct {
		student *studentTable
	}

	// studentTable keeps records by id plus their insertion order.
	studentTable struct {
		sync.RWMutex
		table map[string]*student.Student
		order []string
	}
)

func Open() (*DB, error) {
	db := &DB{
		student: &studentTable{table: make(map[string]*student.Student)},
	}
	return db, nil
}

// Reset drops every record. Used by tests and the admin CLI.
func (db *DB) Reset() {
	db.student.Lock()
	defer db.student.Unlock()
	db.student.table = make(map[string]*student.Student)
	db.student.order = nil
}
