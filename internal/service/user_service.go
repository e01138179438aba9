package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/Eursukkul/eventsphere/internal/models"
	"github.com/Eursukkul/eventsphere/internal/repository"
	"github.com/Eursukkul/eventsphere/pkg/storage"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

const notificationPageSize = 50

// ProfileInput holds the editable profile fields. A nil field was not sent.
type ProfileInput struct {
	Name       *string
	Phone      *string
	RoleType   *string
	Interests  []string
	ProfilePic *string
}

// ImageStore persists an uploaded image and returns where it is served.
type ImageStore interface {
	SaveImage(originalName string, r io.Reader) (*storage.Stored, error)
}

type UserService interface {
	GetUser(ctx context.Context, id uint) (*models.User, error)
	UpdateProfile(ctx context.Context, id uint, in ProfileInput) (*models.User, error)
	UploadPhoto(ctx context.Context, id uint, filename string, r io.Reader) (*storage.Stored, error)
	Notifications(ctx context.Context, id uint) ([]models.Notification, error)
	MarkNotificationsRead(ctx context.Context, id uint) error
}

type userService struct {
	users         repository.UserRepository
	notifications repository.NotificationRepository
	images        ImageStore
	now           func() time.Time
}

func NewUserService(users repository.UserRepository, notifications repository.NotificationRepository, images ImageStore) UserService {
	return &userService{users: users, notifications: notifications, images: images, now: time.Now}
}

// SplitInterests turns "a, b,,c" into [a b c].
func SplitInterests(s string) []string {
	out := []string{}
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func (s *userService) GetUser(ctx context.Context, id uint) (*models.User, error) {
	user, err := s.users.FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}

func (s *userService) UpdateProfile(ctx context.Context, id uint, in ProfileInput) (*models.User, error) {
	user, err := s.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}

	setIf(&user.Name, in.Name)
	setIf(&user.Phone, in.Phone)
	setIf(&user.RoleType, in.RoleType)
	setIf(&user.ProfilePic, in.ProfilePic)
	if in.Interests != nil {
		user.Interests = pq.StringArray(in.Interests)
	}

	if err := s.users.Save(ctx, user); err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}
	return user, nil
}

func (s *userService) UploadPhoto(ctx context.Context, id uint, filename string, r io.Reader) (*storage.Stored, error) {
	user, err := s.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}

	stored, err := s.images.SaveImage(filename, r)
	if err != nil {
		return nil, err
	}

	user.ProfilePic = stored.Path
	if err := s.users.Save(ctx, user); err != nil {
		return nil, fmt.Errorf("save profile photo: %w", err)
	}
	return stored, nil
}

func (s *userService) Notifications(ctx context.Context, id uint) ([]models.Notification, error) {
	notifications, err := s.notifications.FindByUser(ctx, id, notificationPageSize)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	return notifications, nil
}

func (s *userService) MarkNotificationsRead(ctx context.Context, id uint) error {
	if err := s.notifications.MarkAllRead(ctx, id, s.now()); err != nil {
		return fmt.Errorf("mark notifications read: %w", err)
	}
	return nil
}
