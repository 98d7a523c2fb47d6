package persistence

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/hireflow/backend/internal/domain/identity"
	"github.com/hireflow/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func TestGormOrganizationRepository_Register(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	orgs := NewGormOrganizationRepository(f.db)
	found, err := orgs.FindBySlug(ctx, f.org.Slug)
	require.NoError(t, err)
	assert.Equal(t, f.org.ID, found.ID)
	assert.Equal(t, "Acme Hiring", found.Name)

	exists, err := orgs.ExistsBySlug(ctx, f.org.Slug)
	require.NoError(t, err)
	assert.True(t, exists)

	roles, err := NewGormRoleRepository(f.db).FindAll(ctx, f.org.ID)
	require.NoError(t, err)
	assert.Len(t, roles, 3)
	for _, r := range roles {
		assert.True(t, r.IsSystem)
		assert.NotEmpty(t, r.Permissions)
	}

	admin, err := NewGormUserProfileRepository(f.db).FindByEmail(ctx, "ADMIN@"+f.org.Slug+".test")
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{f.roles[identity.RoleAdmin].ID}, admin.RoleIDs)
}

func TestGormOrganizationRepository_FindByID_NotFound(t *testing.T) {
	db := setupTestDB(t)
	_, err := NewGormOrganizationRepository(db).FindByID(context.Background(), uuid.New())
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestGormOrganizationRepository_FindByID_Postgres(t *testing.T) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer mockDB.Close()

	gormDB, err := gorm.Open(postgres.New(postgres.Config{Conn: mockDB, DriverName: "postgres"}), &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	id := uuid.New()
	rows := sqlmock.NewRows([]string{"id", "name", "slug", "status", "version"}).
		AddRow(id, "Acme", "acme", "active", 3)
	mock.ExpectQuery(`SELECT \* FROM "organizations" WHERE id = \$1 ORDER BY .* LIMIT .*`).
		WithArgs(id, 1).
		WillReturnRows(rows)

	org, err := NewGormOrganizationRepository(gormDB).FindByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "acme", org.Slug)
	assert.Equal(t, 3, org.Version)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormRoleRepository_SaveReplacesPermissions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	repo := NewGormRoleRepository(f.db)

	role, err := identity.NewRole(f.org.ID, "sourcer", "Sourcer")
	require.NoError(t, err)
	require.NoError(t, role.SetPermissions([]string{"candidate:read", "candidate:create"}))
	require.NoError(t, repo.Save(ctx, role))

	require.NoError(t, role.SetPermissions([]string{"job:read"}))
	require.NoError(t, repo.Save(ctx, role))

	found, err := repo.FindByCode(ctx, f.org.ID, "SOURCER")
	require.NoError(t, err)
	assert.Equal(t, []string{"job:read"}, found.PermissionCodes())

	byCodes, err := repo.FindByCodes(ctx, f.org.ID, []string{"sourcer", identity.RoleHR})
	require.NoError(t, err)
	assert.Len(t, byCodes, 2)

	t.Run("delete removes role", func(t *testing.T) {
		require.NoError(t, repo.Delete(ctx, f.org.ID, role.ID))
		_, err := repo.FindByID(ctx, f.org.ID, role.ID)
		assert.ErrorIs(t, err, shared.ErrNotFound)
		assert.ErrorIs(t, repo.Delete(ctx, f.org.ID, role.ID), shared.ErrNotFound)
	})

	t.Run("other organization cannot read role", func(t *testing.T) {
		_, err := repo.FindByID(ctx, uuid.New(), f.roles[identity.RoleHR].ID)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestGormUserProfileRepository_FindAll(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	repo := NewGormUserProfileRepository(f.db)

	f.addMember(t, "hannah@example.com", identity.RoleHR)
	ta := f.addMember(t, "tom@example.com", identity.RoleTalentAcquisition)
	f.addMember(t, "tina@example.com", identity.RoleTalentAcquisition)

	t.Run("filters by role code", func(t *testing.T) {
		users, total, err := repo.FindAll(ctx, f.org.ID, identity.MemberFilter{RoleCode: identity.RoleTalentAcquisition})
		require.NoError(t, err)
		assert.Equal(t, int64(2), total)
		assert.Len(t, users, 2)
	})

	t.Run("searches name and email", func(t *testing.T) {
		users, total, err := repo.FindAll(ctx, f.org.ID, identity.MemberFilter{Keyword: "TOM@"})
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		assert.Equal(t, ta.ID, users[0].ID)
		assert.Equal(t, []uuid.UUID{f.roles[identity.RoleTalentAcquisition].ID}, users[0].RoleIDs)
	})

	t.Run("paginates", func(t *testing.T) {
		users, total, err := repo.FindAll(ctx, f.org.ID, identity.MemberFilter{Page: 2, PageSize: 3, OrderBy: "email", OrderDir: "asc"})
		require.NoError(t, err)
		assert.Equal(t, int64(4), total)
		require.Len(t, users, 1)
		assert.Equal(t, "tom@example.com", users[0].Email)
	})

	t.Run("filters by status", func(t *testing.T) {
		require.NoError(t, ta.Deactivate())
		require.NoError(t, repo.Save(ctx, ta))
		users, _, err := repo.FindAll(ctx, f.org.ID, identity.MemberFilter{Status: identity.UserStatusDeactivated})
		require.NoError(t, err)
		require.Len(t, users, 1)
		assert.Equal(t, ta.ID, users[0].ID)
	})
}

func TestGormUserProfileRepository_CountActiveWithRole(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	repo := NewGormUserProfileRepository(f.db)
	adminRole := f.roles[identity.RoleAdmin].ID

	second := f.addMember(t, "second@example.com", identity.RoleAdmin)
	count, err := repo.CountActiveWithRole(ctx, f.org.ID, adminRole)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	require.NoError(t, second.Deactivate())
	require.NoError(t, repo.Save(ctx, second))
	count, err = repo.CountActiveWithRole(ctx, f.org.ID, adminRole)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	held, err := NewGormRoleRepository(f.db).CountUsersWithRole(ctx, f.org.ID, adminRole)
	require.NoError(t, err)
	assert.Equal(t, int64(2), held)
}

func TestGormUserProfileRepository_ExistsByEmail(t *testing.T) {
	f := newFixture(t)
	repo := NewGormUserProfileRepository(f.db)

	exists, err := repo.ExistsByEmail(context.Background(), " Admin@"+f.org.Slug+".test ")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.ExistsByEmail(context.Background(), "nobody@example.com")
	require.NoError(t, err)
	assert.False(t, exists)
}
