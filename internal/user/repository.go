package user

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// findUser returns nil without error when username does not exist.
func findUser(ctx context.Context, db *gorm.DB, username string) (*User, error) {
	var u User
	err := db.WithContext(ctx).Where("username = ?", username).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query user %q: %w", username, err)
	}
	return &u, nil
}

func listUsers(ctx context.Context, db *gorm.DB) ([]User, error) {
	var users []User
	if err := db.WithContext(ctx).Order("username ASC").Find(&users).Error; err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

func countUsers(ctx context.Context, db *gorm.DB) (int64, error) {
	var n int64
	if err := db.WithContext(ctx).Model(&User{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return n, nil
}

func insertUser(ctx context.Context, db *gorm.DB, u *User) error {
	if err := db.WithContext(ctx).Create(u).Error; err != nil {
		return fmt.Errorf("insert user %q: %w", u.Username, err)
	}
	return nil
}

func updateUser(ctx context.Context, db *gorm.DB, username string, fields map[string]any) (int64, error) {
	res := db.WithContext(ctx).Model(&User{}).Where("username = ?", username).Updates(fields)
	if res.Error != nil {
		return 0, fmt.Errorf("update user %q: %w", username, res.Error)
	}
	return res.RowsAffected, nil
}

func deleteUser(ctx context.Context, db *gorm.DB, username string) (int64, error) {
	res := db.WithContext(ctx).Where("username = ?", username).Delete(&User{})
	if res.Error != nil {
		return 0, fmt.Errorf("delete user %q: %w", username, res.Error)
	}
	return res.RowsAffected, nil
}
