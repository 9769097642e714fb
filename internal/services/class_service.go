package services

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/pmarinho/classxp/internal/models"
)

type ErrorCode string

const (
	ErrorInvalid    ErrorCode = "invalid"
	ErrorNotFound   ErrorCode = "not_found"
	ErrorConflict   ErrorCode = "conflict"
	ErrorBadGateway ErrorCode = "bad_gateway"
)

type ServiceError struct {
	Code    ErrorCode
	Message string
}

func (e *ServiceError) Error() string { return e.Message }

func NewInvalidError(msg string) error    { return &ServiceError{Code: ErrorInvalid, Message: msg} }
func NewNotFoundError(msg string) error   { return &ServiceError{Code: ErrorNotFound, Message: msg} }
func NewConflictError(msg string) error   { return &ServiceError{Code: ErrorConflict, Message: msg} }
func NewBadGatewayError(msg string) error { return &ServiceError{Code: ErrorBadGateway, Message: msg} }

func AsServiceError(err error) (*ServiceError, bool) {
	var se *ServiceError
	if errors.As(err, &se) {
		return se, true
	}
	return nil, false
}

// ClassStore abstracts the persistence operations required by ClassService.
type ClassStore interface {
	AddClass(c *models.ClassConfig)
	UpdateClass(c *models.ClassConfig) bool
	DeleteClass(id string) bool
	GetClass(id string) *models.ClassConfig
	ListClasses() []*models.ClassConfig
}

// ClassService owns the administrative CRUD on classes, teachers and students.
type ClassService struct {
	store ClassStore
	idGen func() string
}

func NewClassService(store ClassStore) *ClassService {
	return &ClassService{store: store, idGen: shortID}
}

func shortID() string { return strings.ReplaceAll(uuid.NewString(), "-", "")[:8] }

// ClassInput carries the editable fields of a class.
type ClassInput struct {
	Name         string                    `json:"name"`
	Color        string                    `json:"color"`
	TaskMode     string                    `json:"taskMode"`
	TrackedItems map[models.CheckType]bool `json:"trackedItems"`
	Teachers     []models.Teacher          `json:"teachers"`
}

func (in *ClassInput) validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return NewInvalidError("name required")
	}
	if in.TaskMode != "" && in.TaskMode != models.TaskModeUnique && in.TaskMode != models.TaskModeDaily {
		return NewInvalidError("taskMode must be unique or daily")
	}
	for t := range in.TrackedItems {
		if !models.KnownCheck(t) {
			return NewInvalidError("unknown tracked item: " + string(t))
		}
	}
	return nil
}

func (s *ClassService) CreateClass(in ClassInput) (*models.ClassConfig, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	tracked := in.TrackedItems
	if tracked == nil {
		// new classes track everything until configured otherwise
		tracked = map[models.CheckType]bool{}
		for _, t := range models.AllChecks {
			tracked[t] = true
		}
	}
	taskMode := in.TaskMode
	if taskMode == "" {
		taskMode = models.TaskModeUnique
	}
	teachers := in.Teachers
	for i := range teachers {
		if teachers[i].ID == "" {
			teachers[i].ID = s.idGen()
		}
	}
	c := &models.ClassConfig{
		ID:           s.idGen(),
		Name:         strings.TrimSpace(in.Name),
		Color:        in.Color,
		Teachers:     teachers,
		TrackedItems: tracked,
		TaskMode:     taskMode,
		Students:     []models.Student{},
	}
	s.store.AddClass(c)
	return c, nil
}

func (s *ClassService) UpdateClass(id string, in ClassInput) (*models.ClassConfig, error) {
	c := s.store.GetClass(id)
	if c == nil {
		return nil, NewNotFoundError("class not found")
	}
	if err := in.validate(); err != nil {
		return nil, err
	}
	c.Name = strings.TrimSpace(in.Name)
	c.Color = in.Color
	if in.TaskMode != "" {
		c.TaskMode = in.TaskMode
	}
	if in.TrackedItems != nil {
		c.TrackedItems = in.TrackedItems
	}
	if in.Teachers != nil {
		for i := range in.Teachers {
			if in.Teachers[i].ID == "" {
				in.Teachers[i].ID = s.idGen()
			}
		}
		c.Teachers = in.Teachers
	}
	s.store.UpdateClass(c)
	return c, nil
}

func (s *ClassService) DeleteClass(id string) error {
	if !s.store.DeleteClass(id) {
		return NewNotFoundError("class not found")
	}
	return nil
}

func (s *ClassService) ListClasses() []*models.ClassConfig {
	return s.store.ListClasses()
}

// StudentInput carries the editable fields of a student.
type StudentInput struct {
	Name      string `json:"name"`
	BirthDate string `json:"birthDate"`
}

func (in *StudentInput) validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return NewInvalidError("name required")
	}
	if in.BirthDate != "" {
		if _, err := time.Parse("2006-01-02", in.BirthDate); err != nil {
			return NewInvalidError("birthDate must be YYYY-MM-DD")
		}
	}
	return nil
}

func (s *ClassService) AddStudent(classID string, in StudentInput) (*models.Student, error) {
	c := s.store.GetClass(classID)
	if c == nil {
		return nil, NewNotFoundError("class not found")
	}
	if err := in.validate(); err != nil {
		return nil, err
	}
	st := models.Student{
		ID:        s.idGen(),
		Name:      strings.TrimSpace(in.Name),
		BirthDate: in.BirthDate,
	}
	c.Students = append(c.Students, st)
	s.store.UpdateClass(c)
	return &c.Students[len(c.Students)-1], nil
}

func (s *ClassService) UpdateStudent(classID, studentID string, in StudentInput) (*models.Student, error) {
	c := s.store.GetClass(classID)
	if c == nil {
		return nil, NewNotFoundError("class not found")
	}
	st := c.Student(studentID)
	if st == nil {
		return nil, NewNotFoundError("student not found")
	}
	if err := in.validate(); err != nil {
		return nil, err
	}
	st.Name = strings.TrimSpace(in.Name)
	st.BirthDate = in.BirthDate
	s.store.UpdateClass(c)
	return st, nil
}

// RemoveStudent unenrolls a student. Historical records stay in the store;
// aggregation treats them as dangling and counts them as zero.
func (s *ClassService) RemoveStudent(classID, studentID string) error {
	c := s.store.GetClass(classID)
	if c == nil {
		return NewNotFoundError("class not found")
	}
	for i := range c.Students {
		if c.Students[i].ID == studentID {
			c.Students = append(c.Students[:i], c.Students[i+1:]...)
			s.store.UpdateClass(c)
			return nil
		}
	}
	return NewNotFoundError("student not found")
}
