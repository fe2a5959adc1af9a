package inmemdb

import (
	"github.com/trezcool/dropwatch/core/student"
)

type studentRepository struct {
	db *studentTable
}

var _ student.Repository = (*studentRepository)(nil) // interface compliance check

func NewStudentRepository(db *DB) student.Repository {
	return &studentRepository{db: db.student}
}

// query copies the table out in insertion order. Callers must hold the lock.
func (repo *studentRepository) query() []student.Student {
	students := make([]student.Student, 0, len(repo.db.order))
	for _, id := range repo.db.order {
		students = append(students, *repo.db.table[id])
	}
	return students
}

func (repo *studentRepository) CreateStudent(s student.Student) (student.Student, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.table[s.ID]; ok {
		return student.Student{}, student.ErrDuplicateID
	}
	repo.db.table[s.ID] = &s
	repo.db.order = append(repo.db.order, s.ID)
	return s, nil
}

func (repo *studentRepository) QueryAllStudents() ([]student.Student, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()
	return repo.query(), nil
}

func (repo *studentRepository) GetStudentByID(id string) (student.Student, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if s, ok := repo.db.table[id]; ok {
		return *s, nil
	}
	return student.Student{}, student.ErrNotFound
}

func (repo *studentRepository) UpdateStudent(id string, update func(s *student.Student)) (student.Student, student.Student, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	orig, ok := repo.db.table[id]
	if !ok {
		return student.Student{}, student.Student{}, student.ErrNotFound
	}
	before := *orig
	s := before
	update(&s)

	// identity fields are fixed for the record's lifetime
	s.ID = before.ID
	s.CreatedAt = before.CreatedAt
	repo.db.table[id] = &s
	return before, s, nil
}

func (repo *studentRepository) DeleteStudentsByID(ids ...string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	if len(ids) == 0 {
		return nil
	}
	drop := make(map[string]bool, len(ids))
	for _, id := range ids {
		if _, ok := repo.db.table[id]; ok {
			drop[id] = true
			delete(repo.db.table, id)
		}
	}
	if len(drop) == 0 {
		return nil
	}
	order := repo.db.order[:0]
	for _, id := range repo.db.order {
		if !drop[id] {
			order = append(order, id)
		}
	}
	repo.db.order = order
	return nil
}
