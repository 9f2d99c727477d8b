package models

import (
	"context"
	"errors"
	"html"
	"strings"
	"time"

	"bitbucket.org/mmdatafocus/finops_backend/config"
	"bitbucket.org/mmdatafocus/finops_backend/utils"
	"gorm.io/gorm"
)

type User struct {
	ID        int       `gorm:"primary_key" json:"id"`
	Username  string    `gorm:"size:100;not null;unique" json:"username"`
	Name      string    `gorm:"size:100;not null" json:"name"`
	Email     *string   `gorm:"size:100;unique" json:"email"`
	Phone     string    `gorm:"size:20" json:"phone"`
	Password  string    `gorm:"size:255;not null" json:"-"`
	Role      UserRole  `gorm:"size:20;not null;default:requester" json:"role"`
	IsActive  *bool     `gorm:"not null;default:true" json:"isActive"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

type NewUser struct {
	Username string   `json:"username" binding:"required"`
	Name     string   `json:"name" binding:"required"`
	Email    string   `json:"email" binding:"omitempty,email"`
	Phone    string   `json:"phone"`
	Password string   `json:"password"`
	Role     UserRole `json:"role" binding:"required"`
	IsActive *bool    `json:"isActive"`
}

type LoginInput struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type LoginInfo struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	User      *User     `json:"user"`
}

type ChangePasswordInput struct {
	OldPassword string `json:"oldPassword" binding:"required"`
	NewPassword string `json:"newPassword" binding:"required"`
}

var errInvalidCredentials = errors.Join(utils.ErrUnauthorized, errors.New("invalid username or password"))

/*
caches:
	User:$id
	RevokedToken:$token
*/

func revokedTokenKey(token string) string {
	return "RevokedToken:" + token
}

// validate input for both create & update. (id = 0 for create)
func (input *NewUser) validate(ctx context.Context, id int) error {
	input.Username = html.EscapeString(strings.TrimSpace(input.Username))
	input.Name = strings.TrimSpace(input.Name)
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))
	if input.Username == "" || input.Name == "" {
		return utils.ErrMissingFields
	}
	if !input.Role.IsValid() {
		return utils.InvalidInput("invalid role %q", input.Role)
	}
	if id == 0 && len(input.Password) < utils.MinPasswordLength {
		return utils.InvalidInput("password must be at least %d characters", utils.MinPasswordLength)
	}
	if input.Phone != "" {
		phone, err := utils.NormalizePhoneNumber(input.Phone, config.DefaultPhoneRegion())
		if err != nil {
			return utils.InvalidInput("invalid phone number")
		}
		input.Phone = phone
	}
	if err := utils.ValidateUnique[User](ctx, "username", input.Username, id); err != nil {
		return err
	}
	if input.Email != "" {
		if err := utils.ValidateUnique[User](ctx, "email", input.Email, id); err != nil {
			return err
		}
	}
	return nil
}

func nilIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func CreateUser(ctx context.Context, input *NewUser) (*User, error) {
	if err := input.validate(ctx, 0); err != nil {
		return nil, err
	}
	hashedPassword, err := utils.HashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	user := User{
		Username: input.Username,
		Name:     input.Name,
		Email:    nilIfEmpty(input.Email),
		Phone:    input.Phone,
		Password: hashedPassword,
		Role:     input.Role,
		IsActive: input.IsActive,
	}
	if user.IsActive == nil {
		user.IsActive = utils.NewTrue()
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateUser changes profile and role; a non-empty password is re-hashed.
func UpdateUser(ctx context.Context, id int, input *NewUser) (*User, error) {
	if err := input.validate(ctx, id); err != nil {
		return nil, err
	}
	user, err := utils.FetchModel[User](ctx, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{
		"Username": input.Username,
		"Name":     input.Name,
		"Email":    nilIfEmpty(input.Email),
		"Phone":    input.Phone,
		"Role":     input.Role,
	}
	if input.IsActive != nil {
		updates["IsActive"] = *input.IsActive
	}
	if input.Password != "" {
		if len(input.Password) < utils.MinPasswordLength {
			return nil, utils.InvalidInput("password must be at least %d characters", utils.MinPasswordLength)
		}
		hashed, err := utils.HashPassword(input.Password)
		if err != nil {
			return nil, err
		}
		updates["Password"] = hashed
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Model(user).Updates(updates).Error; err != nil {
		return nil, err
	}
	if err := utils.RemoveRedisItem[User](id); err != nil {
		return nil, err
	}
	return user, nil
}

func DeleteUser(ctx context.Context, id int) (*User, error) {
	currentId, _, err := utils.CurrentUser(ctx)
	if err != nil {
		return nil, err
	}
	if currentId == id {
		return nil, utils.InvalidInput("cannot delete yourself")
	}
	user, err := utils.FetchModel[User](ctx, id)
	if err != nil {
		return nil, err
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Delete(user).Error; err != nil {
		return nil, err
	}
	if err := utils.RemoveRedisItem[User](id); err != nil {
		return nil, err
	}
	return user, nil
}

// GetUser reads through the User:$id cache.
func GetUser(ctx context.Context, id int) (*User, error) {
	return GetResource[User](ctx, id)
}

func ListUsers(ctx context.Context, role UserRole) ([]*User, error) {
	db := config.GetDB()
	dbCtx := db.WithContext(ctx)
	if role != "" {
		dbCtx = dbCtx.Where("role = ?", role)
	}
	var results []*User
	if err := dbCtx.Order("username").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func Login(ctx context.Context, input *LoginInput) (*LoginInfo, error) {
	db := config.GetDB()
	var user User
	err := db.WithContext(ctx).Where("username = ?", strings.TrimSpace(input.Username)).Take(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errInvalidCredentials
		}
		return nil, err
	}
	if err := utils.ComparePassword(user.Password, input.Password); err != nil {
		return nil, errInvalidCredentials
	}
	if user.IsActive != nil && !*user.IsActive {
		return nil, errors.Join(utils.ErrUnauthorized, errors.New("user is disabled"))
	}

	token, err := utils.JwtGenerate(user.ID, string(user.Role))
	if err != nil {
		return nil, err
	}
	return &LoginInfo{
		Token:     token,
		ExpiresAt: time.Now().Add(utils.GetTokenLifespan()).UTC(),
		User:      &user,
	}, nil
}

// Logout revokes the current token until it would have expired anyway.
func Logout(ctx context.Context) (bool, error) {
	token, ok := utils.GetTokenFromContext(ctx)
	if !ok || token == "" {
		return false, utils.ErrUnauthorized
	}
	if err := config.SetRedisValue(revokedTokenKey(token), "1", utils.GetTokenLifespan()); err != nil {
		return false, err
	}
	return true, nil
}

func IsTokenRevoked(token string) (bool, error) {
	_, exists, err := config.GetRedisValue(revokedTokenKey(token))
	return exists, err
}

// Me returns the authenticated user.
func Me(ctx context.Context) (*User, error) {
	userId, _, err := utils.CurrentUser(ctx)
	if err != nil {
		return nil, err
	}
	return GetUser(ctx, userId)
}

func ChangePassword(ctx context.Context, input *ChangePasswordInput) (*User, error) {
	userId, _, err := utils.CurrentUser(ctx)
	if err != nil {
		return nil, err
	}
	if len(input.NewPassword) < utils.MinPasswordLength {
		return nil, utils.InvalidInput("password must be at least %d characters", utils.MinPasswordLength)
	}

	user, err := utils.FetchModel[User](ctx, userId)
	if err != nil {
		return nil, err
	}
	if err := utils.ComparePassword(user.Password, input.OldPassword); err != nil {
		return nil, utils.InvalidInput("old password is wrong")
	}
	hashed, err := utils.HashPassword(input.NewPassword)
	if err != nil {
		return nil, err
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Model(user).Update("Password", hashed).Error; err != nil {
		return nil, err
	}
	return user, nil
}
