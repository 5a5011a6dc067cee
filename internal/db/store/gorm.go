package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/idam-admin/idam/internal/db/models"
)

const likeEscape = "!"

// Gorm implements IdentityStore with gorm.
type Gorm struct {
	db *gorm.DB
}

var _ IdentityStore = (*Gorm)(nil)

// New creates a gorm backed store.
func New(db *gorm.DB) (*Gorm, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	return &Gorm{db: db}, nil
}

// Transaction runs fn in a database transaction. An error returned by fn rolls back.
func (s *Gorm) Transaction(ctx context.Context, fn func(tx IdentityStore) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error { //nolint:wrapcheck
		return fn(&Gorm{db: tx})
	})
}

func (s *Gorm) conn(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx)
}

// FindUserByID returns the user with id.
func (s *Gorm) FindUserByID(ctx context.Context, id uint64) (*models.User, error) {
	var user models.User

	if err := s.conn(ctx).First(&user, id).Error; err != nil {
		return nil, translate(err, "find user %d", id)
	}

	return &user, nil
}

// FindUserBySubjectID returns the user bound to subjectID.
func (s *Gorm) FindUserBySubjectID(ctx context.Context, subjectID string) (*models.User, error) {
	if subjectID == "" {
		return nil, ErrNotFound
	}

	var user models.User

	if err := s.conn(ctx).Where("subject_id = ?", subjectID).First(&user).Error; err != nil {
		return nil, translate(err, "find user by subject")
	}

	return &user, nil
}

// FindUserByEmail matches case-insensitively and returns the oldest row on ties.
func (s *Gorm) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, ErrNotFound
	}

	var user models.User

	err := s.conn(ctx).
		Where("LOWER(email_address) = ?", strings.ToLower(email)).
		Order("id ASC").
		First(&user).Error
	if err != nil {
		return nil, translate(err, "find user by email")
	}

	return &user, nil
}

// FindUsersBySubjectIDs returns the users bound to any of subjectIDs, in id order.
func (s *Gorm) FindUsersBySubjectIDs(ctx context.Context, subjectIDs []string) ([]models.User, error) {
	users := []models.User{}
	if len(subjectIDs) == 0 {
		return users, nil
	}

	if err := s.conn(ctx).Where("subject_id IN ?", subjectIDs).Order("id ASC").Find(&users).Error; err != nil {
		return nil, fmt.Errorf("find users by subject ids: %w", err)
	}

	return users, nil
}

// SearchUsers returns users newest first. A blank filter returns everybody.
// Otherwise the filter matches, case-insensitively and as a substring, the subject id,
// email address, first name or last name. A filter containing a blank also matches
// "first last": the part before the first blank against the first name and the rest
// against the last name.
func (s *Gorm) SearchUsers(ctx context.Context, filter string) ([]models.User, error) {
	query := s.conn(ctx).Model(&models.User{})

	filter = strings.ToLower(strings.TrimSpace(filter))
	if filter != "" {
		pattern := likePattern(filter)
		like := "LOWER(%s) LIKE ? ESCAPE '" + likeEscape + "'"

		cond := s.db.Where(fmt.Sprintf(like, "subject_id"), pattern).
			Or(fmt.Sprintf(like, "email_address"), pattern).
			Or(fmt.Sprintf(like, "first_name"), pattern).
			Or(fmt.Sprintf(like, "last_name"), pattern)

		if first, last, ok := strings.Cut(filter, " "); ok {
			cond = cond.Or(
				s.db.Where(fmt.Sprintf(like, "first_name"), likePattern(first)).
					Where(fmt.Sprintf(like, "last_name"), likePattern(strings.TrimSpace(last))),
			)
		}

		query = query.Where(cond)
	}

	users := []models.User{}
	if err := query.Order("created_at DESC").Order("id DESC").Find(&users).Error; err != nil {
		return nil, fmt.Errorf("search users: %w", err)
	}

	return users, nil
}

// InsertUser creates user and sets its id.
func (s *Gorm) InsertUser(ctx context.Context, user *models.User) error {
	if err := s.conn(ctx).Create(user).Error; err != nil {
		return translate(err, "insert user")
	}

	return nil
}

// UpdateUser writes every column of a previously loaded user.
func (s *Gorm) UpdateUser(ctx context.Context, user *models.User) error {
	if user.ID == 0 {
		return fmt.Errorf("update user: %w", ErrNotFound)
	}

	if err := s.conn(ctx).Model(user).Select("*").Omit("id", "created_at").Updates(user).Error; err != nil {
		return translate(err, "update user %d", user.ID)
	}

	return nil
}

// DeleteUser removes the user with its grants and terms acceptances.
// Callers that need it atomic run it inside Transaction.
func (s *Gorm) DeleteUser(ctx context.Context, id uint64) error {
	db := s.conn(ctx)

	if err := db.Where("user_id = ?", id).Delete(&models.UserRole{}).Error; err != nil {
		return fmt.Errorf("delete roles of user %d: %w", id, err)
	}

	if err := db.Where("user_id = ?", id).Delete(&models.TermsAcceptance{}).Error; err != nil {
		return fmt.Errorf("delete terms acceptances of user %d: %w", id, err)
	}

	result := db.Delete(&models.User{}, id)
	if result.Error != nil {
		return fmt.Errorf("delete user %d: %w", id, result.Error)
	}

	if result.RowsAffected == 0 {
		return fmt.Errorf("delete user %d: %w", id, ErrNotFound)
	}

	return nil
}

// FindWebsiteByID returns the website with id.
func (s *Gorm) FindWebsiteByID(ctx context.Context, id uint64) (*models.Website, error) {
	var website models.Website

	if err := s.conn(ctx).First(&website, id).Error; err != nil {
		return nil, translate(err, "find website %d", id)
	}

	return &website, nil
}

// FindRolesByWebsite returns every role of the website in id order.
func (s *Gorm) FindRolesByWebsite(ctx context.Context, websiteID uint64) ([]models.Role, error) {
	roles := []models.Role{}

	if err := s.conn(ctx).Where("website_id = ?", websiteID).Order("id ASC").Find(&roles).Error; err != nil {
		return nil, fmt.Errorf("find roles of website %d: %w", websiteID, err)
	}

	return roles, nil
}

// FindRoleByID returns the role with id.
func (s *Gorm) FindRoleByID(ctx context.Context, id uint64) (*models.Role, error) {
	var role models.Role

	if err := s.conn(ctx).First(&role, id).Error; err != nil {
		return nil, translate(err, "find role %d", id)
	}

	return &role, nil
}

// FindRoleByNameAndHost returns the role named roleName on the website serving host.
// Host matching is case-insensitive.
func (s *Gorm) FindRoleByNameAndHost(ctx context.Context, roleName, host string) (*models.Role, error) {
	var role models.Role

	err := s.conn(ctx).
		Joins("JOIN websites ON websites.id = roles.website_id").
		Where("roles.name = ? AND LOWER(websites.host) = ?", roleName, strings.ToLower(host)).
		First(&role).Error
	if err != nil {
		return nil, translate(err, "find role %q on %q", roleName, host)
	}

	return &role, nil
}

// FindRoleNamesByHost maps each given subject id to its role names on host,
// in grant order. Subjects without grants on host are missing from the map.
func (s *Gorm) FindRoleNamesByHost(ctx context.Context, subjectIDs []string, host string) (map[string][]string, error) {
	out := make(map[string][]string, len(subjectIDs))
	if len(subjectIDs) == 0 {
		return out, nil
	}

	var rows []struct {
		SubjectID string
		RoleName  string
	}

	err := s.conn(ctx).
		Table("user_roles").
		Select("users.subject_id AS subject_id, roles.name AS role_name").
		Joins("JOIN users ON users.id = user_roles.user_id").
		Joins("JOIN roles ON roles.id = user_roles.role_id").
		Joins("JOIN websites ON websites.id = roles.website_id").
		Where("users.subject_id IN ? AND LOWER(websites.host) = ?", subjectIDs, strings.ToLower(host)).
		Order("user_roles.id ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("find role names on %q: %w", host, err)
	}

	for _, row := range rows {
		out[row.SubjectID] = append(out[row.SubjectID], row.RoleName)
	}

	return out, nil
}

// FindUserRole returns the grant of roleID to userID.
func (s *Gorm) FindUserRole(ctx context.Context, userID, roleID uint64) (*models.UserRole, error) {
	var userRole models.UserRole

	if err := s.conn(ctx).Where("user_id = ? AND role_id = ?", userID, roleID).First(&userRole).Error; err != nil {
		return nil, translate(err, "find grant of role %d to user %d", roleID, userID)
	}

	return &userRole, nil
}

// FindUserRoleRows returns the user's grants ordered by grant id, with Role and Role.Website loaded.
func (s *Gorm) FindUserRoleRows(ctx context.Context, userID uint64) ([]models.UserRole, error) {
	rows := []models.UserRole{}

	err := s.conn(ctx).
		Preload("Role.Website").
		Where("user_id = ?", userID).
		Order("id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("find roles of user %d: %w", userID, err)
	}

	return rows, nil
}

// InsertUserRole creates a grant. An existing grant for the same pair yields ErrConflict.
func (s *Gorm) InsertUserRole(ctx context.Context, userRole *models.UserRole) error {
	if err := s.conn(ctx).Omit("User", "Role").Create(userRole).Error; err != nil {
		return translate(err, "grant role %d to user %d", userRole.RoleID, userRole.UserID)
	}

	return nil
}

// DeleteUserRole removes the grant of roleID to userID. A missing grant is not an error.
func (s *Gorm) DeleteUserRole(ctx context.Context, userID, roleID uint64) error {
	err := s.conn(ctx).Where("user_id = ? AND role_id = ?", userID, roleID).Delete(&models.UserRole{}).Error
	if err != nil {
		return fmt.Errorf("revoke role %d from user %d: %w", roleID, userID, err)
	}

	return nil
}

// FindLatestAcceptedTerms returns the acceptance with the highest terms version.
func (s *Gorm) FindLatestAcceptedTerms(ctx context.Context, userID uint64) (*models.TermsAcceptance, error) {
	var acceptance models.TermsAcceptance

	err := s.conn(ctx).
		Where("user_id = ?", userID).
		Order("terms_version_id DESC").
		First(&acceptance).Error
	if err != nil {
		return nil, translate(err, "find latest terms of user %d", userID)
	}

	return &acceptance, nil
}

// translate maps gorm errors to store errors and adds context.
func translate(err error, format string, args ...any) error {
	msg := fmt.Sprintf(format, args...)

	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return fmt.Errorf("%s: %w", msg, ErrNotFound)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%s: %w", msg, ErrConflict)
	default:
		return fmt.Errorf("%s: %w", msg, err)
	}
}

func likePattern(s string) string {
	r := strings.NewReplacer(likeEscape, likeEscape+likeEscape, "%", likeEscape+"%", "_", likeEscape+"_")

	return "%" + r.Replace(s) + "%"
}
