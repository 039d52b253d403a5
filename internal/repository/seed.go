package repository

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/hitoshi/classpulse/internal/model"
)

// DemoPassword はデモデータの全アカウント共通の初期パスワード。
const DemoPassword = "password123"

// EnsureAdmin は指定されたメールアドレスの管理者アカウントが存在することを保証する。
// 既に同じメールアドレスのユーザーが存在する場合は何もしない。
func EnsureAdmin(ctx context.Context, users UserRepository, name, email, password string) error {
	existing, err := users.FindByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("管理者アカウントの確認に失敗しました: %w", err)
	}
	if existing != nil {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("パスワードハッシュの生成に失敗しました: %w", err)
	}

	now := time.Now()
	return users.Create(ctx, &model.User{
		ID:           "admin-" + fmt.Sprintf("%d", now.UnixNano()),
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		Role:         model.RoleAdmin,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
}

// SeedDemoData はデモ用の初期データを投入する。
// ユーザー・コース・フィードバックをまとめて作成する。
// 全アカウントのパスワードはDemoPassword。
func SeedDemoData(ctx context.Context, users UserRepository, courses CourseRepository, feedback FeedbackRepository) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(DemoPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("パスワードハッシュの生成に失敗しました: %w", err)
	}

	dob := time.Date(2002, 5, 15, 0, 0, 0, 0, time.UTC)
	demoUsers := []*model.User{
		{
			ID:        "admin-001",
			Name:      "Admin User",
			Email:     "admin@example.com",
			Role:      model.RoleAdmin,
			CreatedAt: time.Date(2023, 1, 1, 10, 0, 0, 0, time.UTC),
		},
		{
			ID:        "admin-002",
			Name:      "Super Admin",
			Email:     "super.admin@example.com",
			Role:      model.RoleAdmin,
			CreatedAt: time.Date(2023, 1, 15, 9, 0, 0, 0, time.UTC),
		},
		{
			ID:          "student-001",
			Name:        "Student User",
			Email:       "student@example.com",
			Role:        model.RoleStudent,
			PhoneNumber: "123-456-7890",
			DateOfBirth: &dob,
			Address:     "123 University Ave, Learnville",
			CreatedAt:   time.Date(2023, 2, 10, 11, 0, 0, 0, time.UTC),
		},
		{
			ID:        "student-002",
			Name:      "Jane Doe",
			Email:     "jane.doe@example.com",
			Role:      model.RoleStudent,
			IsBlocked: true,
			CreatedAt: time.Date(2023, 3, 20, 12, 0, 0, 0, time.UTC),
		},
	}
	for _, u := range demoUsers {
		u.PasswordHash = string(hash)
		u.UpdatedAt = u.CreatedAt
		if err := users.Create(ctx, u); err != nil {
			return fmt.Errorf("デモユーザーの作成に失敗しました: %w", err)
		}
	}

	now := time.Now()
	demoCourses := []*model.Course{
		{ID: "course-101", Name: "Introduction to React", Description: "Learn the fundamentals of React and build modern web applications.", VideoURL: "https://www.youtube.com/watch?v=SqcY0GlETPk"},
		{ID: "course-102", Name: "Advanced CSS", Description: "Master advanced CSS techniques like Flexbox, Grid, and animations."},
		{ID: "course-201", Name: "Node.js for Beginners", Description: "An introduction to backend development with Node.js and Express.", VideoURL: "https://www.youtube.com/watch?v=f2EqECiTBL8"},
		{ID: "course-301", Name: "Mastering Python", Description: "From basics to advanced concepts, become a Python pro."},
		{ID: "course-302", Name: "Data Science with Pandas", Description: "Learn to manipulate and analyze data effectively using the Pandas library."},
		{ID: "course-401", Name: "UI/UX Design Fundamentals", Description: "Discover the principles of user-centered design and create beautiful interfaces.", VideoURL: "https://www.youtube.com/watch?v=cKZEgt61w_o"},
		{ID: "course-402", Name: "Agile Project Management", Description: "Learn the Scrum and Kanban frameworks for effective project delivery."},
		{ID: "course-501", Name: "Database Systems & SQL", Description: "An in-depth look at relational databases and the SQL language."},
	}
	for _, c := range demoCourses {
		c.CreatedAt = now
		c.UpdatedAt = now
		if err := courses.Create(ctx, c); err != nil {
			return fmt.Errorf("デモコースの作成に失敗しました: %w", err)
		}
	}

	demoFeedback := []*model.Feedback{
		{
			ID: "fb-001", StudentID: "student-001", StudentName: "Student User",
			CourseID: "course-101", CourseName: "Introduction to React",
			Rating: 5, Message: "Excellent course! The instructor was clear and the projects were very helpful.",
			CreatedAt: time.Date(2023, 10, 1, 10, 0, 0, 0, time.UTC),
		},
		{
			ID: "fb-002", StudentID: "student-001", StudentName: "Student User",
			CourseID: "course-102", CourseName: "Advanced CSS",
			Rating: 4, Message: "Good content, but could use more real-world examples.",
			CreatedAt: time.Date(2023, 10, 5, 14, 0, 0, 0, time.UTC),
		},
		{
			ID: "fb-003", StudentID: "student-002", StudentName: "Jane Doe",
			CourseID: "course-101", CourseName: "Introduction to React",
			Rating: 3, Message: "It was okay. A bit fast-paced for me.",
			CreatedAt: time.Date(2023, 10, 2, 18, 0, 0, 0, time.UTC),
		},
	}
	for _, fb := range demoFeedback {
		fb.UpdatedAt = fb.CreatedAt
		if err := feedback.Create(ctx, fb); err != nil {
			return fmt.Errorf("デモフィードバックの作成に失敗しました: %w", err)
		}
	}

	return nil
}
