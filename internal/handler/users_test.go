package handler_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/salesledger/api/internal/database"
	"github.com/salesledger/api/internal/enum"
	"github.com/salesledger/api/internal/handler"
	mw "github.com/salesledger/api/internal/middleware"
	"github.com/salesledger/api/internal/policy"
	"golang.org/x/crypto/bcrypt"
)

type mockUserStore struct {
	users map[uuid.UUID]database.User

	createErr error
	deleted   []uuid.UUID
}

func newMockUserStore() *mockUserStore {
	return &mockUserStore{users: make(map[uuid.UUID]database.User)}
}

func (m *mockUserStore) ListUsers(_ context.Context) ([]database.User, error) {
	out := make([]database.User, 0, len(m.users))
	for _, u := range m.users {
		out = append(out, u)
	}
	return out, nil
}

func (m *mockUserStore) GetUserByID(_ context.Context, id uuid.UUID) (database.User, error) {
	u, ok := m.users[id]
	if !ok {
		return database.User{}, pgx.ErrNoRows
	}
	return u, nil
}

func (m *mockUserStore) CreateUser(_ context.Context, arg database.CreateUserParams) (database.User, error) {
	if m.createErr != nil {
		return database.User{}, m.createErr
	}
	u := database.User{
		ID:           uuid.New(),
		Name:         arg.Name,
		Email:        arg.Email,
		PasswordHash: arg.PasswordHash,
		Role:         arg.Role,
		Status:       arg.Status,
	}
	m.users[u.ID] = u
	return u, nil
}

func (m *mockUserStore) UpdateUser(_ context.Context, arg database.UpdateUserParams) (database.User, error) {
	u, ok := m.users[arg.ID]
	if !ok {
		return database.User{}, pgx.ErrNoRows
	}
	u.Name = arg.Name
	u.Email = arg.Email
	u.Role = arg.Role
	u.Status = arg.Status
	m.users[arg.ID] = u
	return u, nil
}

func (m *mockUserStore) SetUserPassword(_ context.Context, arg database.SetUserPasswordParams) error {
	u, ok := m.users[arg.ID]
	if !ok {
		return pgx.ErrNoRows
	}
	u.PasswordHash = arg.PasswordHash
	m.users[arg.ID] = u
	return nil
}

func (m *mockUserStore) DeleteUser(_ context.Context, id uuid.UUID) error {
	delete(m.users, id)
	m.deleted = append(m.deleted, id)
	return nil
}

func userRouter(store *mockUserStore) chi.Router {
	h := handler.NewUserHandler(store)
	r := chi.NewRouter()
	r.Group(func(r chi.Router) {
		r.Use(mw.Authenticate(testSecret))
		r.Route("/admin/users", func(r chi.Router) {
			r.Use(mw.RequireCapability(policy.CapManageReferenceData))
			h.RegisterAdminRoutes(r)
		})
	})
	return r
}

func TestCreateUser_HashesPassword(t *testing.T) {
	store := newMockUserStore()
	r := userRouter(store)

	token := mintToken(t, uuid.New(), "Root", enum.RoleSuperAdmin)
	rr := doAuthed(t, r, "POST", "/admin/users", token, map[string]string{
		"name":     "New Clerk",
		"email":    "clerk@test.com",
		"password": "hunter22",
		"role":     enum.RoleRegularUser,
	})

	if rr.Code != http.StatusCreated {
		t.Fatalf("status: got %d; body: %s", rr.Code, rr.Body.String())
	}

	var stored database.User
	for _, u := range store.users {
		stored = u
	}
	if stored.PasswordHash == "hunter22" {
		t.Fatal("password stored in plaintext")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("hunter22")); err != nil {
		t.Errorf("stored hash does not match password: %v", err)
	}

	resp := decodeResponse(t, rr)
	if _, present := resp["password_hash"]; present {
		t.Error("response must not expose the password hash")
	}
}

func TestCreateUser_DuplicateEmail(t *testing.T) {
	store := newMockUserStore()
	store.createErr = &pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"}
	r := userRouter(store)

	token := mintToken(t, uuid.New(), "Root", enum.RoleSuperAdmin)
	rr := doAuthed(t, r, "POST", "/admin/users", token, map[string]string{
		"name":     "New Clerk",
		"email":    "taken@test.com",
		"password": "hunter22",
	})

	if rr.Code != http.StatusConflict {
		t.Errorf("status: got %d, want %d", rr.Code, http.StatusConflict)
	}
}

func TestCreateUser_InvalidRole(t *testing.T) {
	r := userRouter(newMockUserStore())

	token := mintToken(t, uuid.New(), "Root", enum.RoleSuperAdmin)
	rr := doAuthed(t, r, "POST", "/admin/users", token, map[string]string{
		"name":     "New Clerk",
		"email":    "clerk@test.com",
		"password": "hunter22",
		"role":     "owner",
	})

	if rr.Code != http.StatusBadRequest {
		t.Errorf("status: got %d, want %d", rr.Code, http.StatusBadRequest)
	}
}

func TestUserRoutes_AdministratorForbidden(t *testing.T) {
	r := userRouter(newMockUserStore())

	token := mintToken(t, uuid.New(), "Admin", enum.RoleAdministrator)
	rr := doAuthed(t, r, "GET", "/admin/users", token, nil)

	if rr.Code != http.StatusForbidden {
		t.Errorf("status: got %d, want %d", rr.Code, http.StatusForbidden)
	}
}

func TestUpdateUser_NotFound(t *testing.T) {
	r := userRouter(newMockUserStore())

	token := mintToken(t, uuid.New(), "Root", enum.RoleSuperAdmin)
	rr := doAuthed(t, r, "PUT", "/admin/users/"+uuid.New().String(), token, map[string]string{
		"name":   "Someone",
		"email":  "someone@test.com",
		"role":   enum.RoleRegularUser,
		"status": enum.StatusActive,
	})

	if rr.Code != http.StatusNotFound {
		t.Errorf("status: got %d, want %d", rr.Code, http.StatusNotFound)
	}
}

func TestDeleteUser_SelfDeletionRefused(t *testing.T) {
	store := newMockUserStore()
	adminID := uuid.New()
	store.users[adminID] = database.User{ID: adminID, Role: enum.RoleSuperAdmin, Status: enum.StatusActive}
	r := userRouter(store)

	token := mintToken(t, adminID, "Root", enum.RoleSuperAdmin)
	rr := doAuthed(t, r, "DELETE", "/admin/users/"+adminID.String(), token, nil)

	if rr.Code != http.StatusBadRequest {
		t.Errorf("status: got %d, want %d", rr.Code, http.StatusBadRequest)
	}
	if len(store.deleted) != 0 {
		t.Error("self-deletion must not reach the store")
	}
}

func TestDeleteUser_OtherAccount(t *testing.T) {
	store := newMockUserStore()
	victimID := uuid.New()
	store.users[victimID] = database.User{ID: victimID, Role: enum.RoleRegularUser, Status: enum.StatusActive}
	r := userRouter(store)

	token := mintToken(t, uuid.New(), "Root", enum.RoleSuperAdmin)
	rr := doAuthed(t, r, "DELETE", "/admin/users/"+victimID.String(), token, nil)

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d; body: %s", rr.Code, rr.Body.String())
	}
	if len(store.deleted) != 1 || store.deleted[0] != victimID {
		t.Errorf("deleted: got %v", store.deleted)
	}
}
