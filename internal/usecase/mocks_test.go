package usecase

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/arklim/project-planner/internal/core/domain"
	"github.com/arklim/project-planner/internal/repository"
)

type fakeHasher struct {
	failHash   bool
	failVerify bool
}

func (h *fakeHasher) Hash(password string) (string, error) {
	if h.failHash {
		return "", errHasherBroken
	}
	return "hashed:" + password, nil
}

func (h *fakeHasher) Verify(password, encoded string) (bool, error) {
	if h.failVerify {
		return false, errHasherBroken
	}
	return encoded == "hashed:"+password, nil
}

var errHasherBroken = &fakeInfraError{"hasher broken"}

type fakeInfraError struct{ msg string }

func (e *fakeInfraError) Error() string { return e.msg }

type mockCredentialStore struct {
	mu          sync.Mutex
	credentials map[string]*domain.Credential

	failGet    error
	failCreate error
	failRecord error
	failReset  error
}

func newMockCredentialStore() *mockCredentialStore {
	return &mockCredentialStore{credentials: make(map[string]*domain.Credential)}
}

func (m *mockCredentialStore) Create(_ context.Context, credential domain.Credential) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failCreate != nil {
		return m.failCreate
	}
	for _, existing := range m.credentials {
		if strings.EqualFold(existing.Email, credential.Email) {
			return repository.ErrDuplicateEmail
		}
	}
	copied := credential
	copied.Email = strings.ToLower(credential.Email)
	m.credentials[credential.ID] = &copied
	return nil
}

func (m *mockCredentialStore) GetByID(_ context.Context, id string) (*domain.Credential, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failGet != nil {
		return nil, m.failGet
	}
	credential, ok := m.credentials[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *credential
	return &copied, nil
}

func (m *mockCredentialStore) GetByEmail(_ context.Context, email string) (*domain.Credential, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failGet != nil {
		return nil, m.failGet
	}
	for _, credential := range m.credentials {
		if strings.EqualFold(credential.Email, email) {
			copied := *credential
			return &copied, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *mockCredentialStore) UpdateRoles(_ context.Context, id string, roles []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	credential, ok := m.credentials[id]
	if !ok {
		return repository.ErrNotFound
	}
	credential.Roles = append([]string(nil), roles...)
	return nil
}

func (m *mockCredentialStore) RecordLoginFailure(_ context.Context, id string, threshold int, cooldown time.Duration, at time.Time) (domain.LockoutState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failRecord != nil {
		return domain.LockoutState{}, m.failRecord
	}
	credential, ok := m.credentials[id]
	if !ok {
		return domain.LockoutState{}, repository.ErrNotFound
	}

	if credential.LockoutUntil != nil && !credential.LockoutUntil.After(at) {
		credential.FailedLoginCount = 1
	} else {
		credential.FailedLoginCount++
	}

	if credential.FailedLoginCount >= threshold {
		until := at.Add(cooldown)
		credential.LockoutUntil = &until
	} else {
		credential.LockoutUntil = nil
	}

	state := domain.LockoutState{FailedLoginCount: credential.FailedLoginCount}
	if credential.LockoutUntil != nil {
		copied := *credential.LockoutUntil
		state.LockoutUntil = &copied
	}
	return state, nil
}

func (m *mockCredentialStore) ResetLockout(_ context.Context, id string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failReset != nil {
		return m.failReset
	}
	credential, ok := m.credentials[id]
	if !ok {
		return repository.ErrNotFound
	}
	credential.FailedLoginCount = 0
	credential.LockoutUntil = nil
	credential.LastLogin = &at
	return nil
}

type mockRoleRegistry struct {
	mu    sync.Mutex
	roles map[string]domain.Role

	createCalls int
}

func newMockRoleRegistry() *mockRoleRegistry {
	return &mockRoleRegistry{roles: make(map[string]domain.Role)}
}

func (m *mockRoleRegistry) Create(_ context.Context, role domain.Role) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.createCalls++
	if _, exists := m.roles[role.Name]; exists {
		return nil
	}
	m.roles[role.Name] = role
	return nil
}

func (m *mockRoleRegistry) GetByName(_ context.Context, name string) (*domain.Role, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	role, ok := m.roles[name]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := role
	return &copied, nil
}

func (m *mockRoleRegistry) List(_ context.Context) ([]domain.Role, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]domain.Role, 0, len(m.roles))
	for _, role := range m.roles {
		result = append(result, role)
	}
	return result, nil
}

type mockProjectRepository struct {
	mu       sync.Mutex
	projects map[string]domain.Project
}

func newMockProjectRepository() *mockProjectRepository {
	return &mockProjectRepository{projects: make(map[string]domain.Project)}
}

func (m *mockProjectRepository) Create(_ context.Context, project domain.Project) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.projects[project.ID] = project
	return nil
}

func (m *mockProjectRepository) GetByID(_ context.Context, id string) (*domain.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	project, ok := m.projects[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := project
	return &copied, nil
}

func (m *mockProjectRepository) List(_ context.Context) ([]domain.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]domain.Project, 0, len(m.projects))
	for _, project := range m.projects {
		result = append(result, project)
	}
	return result, nil
}

func (m *mockProjectRepository) Update(_ context.Context, project domain.Project) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.projects[project.ID]; !ok {
		return repository.ErrNotFound
	}
	m.projects[project.ID] = project
	return nil
}

func (m *mockProjectRepository) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.projects[id]; !ok {
		return repository.ErrNotFound
	}
	delete(m.projects, id)
	return nil
}

type mockTaskRepository struct {
	mu    sync.Mutex
	tasks map[string]domain.TaskItem
}

func newMockTaskRepository() *mockTaskRepository {
	return &mockTaskRepository{tasks: make(map[string]domain.TaskItem)}
}

func (m *mockTaskRepository) Create(_ context.Context, task domain.TaskItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tasks[task.ID] = task
	return nil
}

func (m *mockTaskRepository) GetByID(_ context.Context, id string) (*domain.TaskItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	task, ok := m.tasks[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := task
	return &copied, nil
}

func (m *mockTaskRepository) ListByProject(_ context.Context, projectID string) ([]domain.TaskItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]domain.TaskItem, 0)
	for _, task := range m.tasks {
		if task.ProjectID == projectID {
			result = append(result, task)
		}
	}
	return result, nil
}

func (m *mockTaskRepository) Update(_ context.Context, task domain.TaskItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.tasks[task.ID]; !ok {
		return repository.ErrNotFound
	}
	m.tasks[task.ID] = task
	return nil
}

func (m *mockTaskRepository) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.tasks[id]; !ok {
		return repository.ErrNotFound
	}
	delete(m.tasks, id)
	return nil
}

type recordingPublisher struct {
	mu         sync.Mutex
	registered []domain.CredentialRegisteredEvent
	succeeded  []domain.LoginSucceededEvent
	failed     []domain.LoginFailedEvent
	locked     []domain.AccountLockedEvent
}

func (p *recordingPublisher) PublishCredentialRegistered(_ context.Context, event domain.CredentialRegisteredEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.registered = append(p.registered, event)
	return nil
}

func (p *recordingPublisher) PublishLoginSucceeded(_ context.Context, event domain.LoginSucceededEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.succeeded = append(p.succeeded, event)
	return nil
}

func (p *recordingPublisher) PublishLoginFailed(_ context.Context, event domain.LoginFailedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.failed = append(p.failed, event)
	return nil
}

func (p *recordingPublisher) PublishAccountLocked(_ context.Context, event domain.AccountLockedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.locked = append(p.locked, event)
	return nil
}
