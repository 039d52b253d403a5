package feedback

import (
	"strings"
	"testing"
	"time"

	"github.com/hitoshi/classpulse/internal/model"
)

func TestWriteCSV_HeaderAndRows(t *testing.T) {
	fbs := []*model.Feedback{
		{
			ID:          "fb-1",
			StudentName: "テスト学生",
			CourseName:  "Go入門",
			Rating:      5,
			Message:     "とても良かったです",
			CreatedAt:   time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		},
		{
			ID:          "fb-2",
			StudentName: "Jane Doe",
			CourseName:  "Advanced Go",
			Rating:      3,
			Message:     "",
			CreatedAt:   time.Date(2025, 6, 2, 9, 30, 0, 0, time.UTC),
		},
	}

	var sb strings.Builder
	if err := WriteCSV(&sb, fbs); err != nil {
		t.Fatalf("WriteCSV() error = %v", err)
	}

	lines := strings.Split(strings.TrimRight(sb.String(), "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("line count = %d, want 3 (header + 2 rows)", len(lines))
	}
	if lines[0] != "ID,Student Name,Course Name,Rating,Message,Date" {
		t.Errorf("header = %q", lines[0])
	}
	if lines[1] != "fb-1,テスト学生,Go入門,5,とても良かったです,2025-06-01T12:00:00Z" {
		t.Errorf("row 1 = %q", lines[1])
	}
	if lines[2] != "fb-2,Jane Doe,Advanced Go,3,,2025-06-02T09:30:00Z" {
		t.Errorf("row 2 = %q", lines[2])
	}
}

func TestWriteCSV_QuotesSpecialCharacters(t *testing.T) {
	fbs := []*model.Feedback{
		{
			ID:          "fb-1",
			StudentName: `学生 "太郎"`,
			CourseName:  "設計, 実装",
			Rating:      4,
			Message:     "改行を\n含む本文",
			CreatedAt:   time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		},
	}

	var sb strings.Builder
	if err := WriteCSV(&sb, fbs); err != nil {
		t.Fatalf("WriteCSV() error = %v", err)
	}
	out := sb.String()

	// ダブルクォートはRFC 4180に従い二重化される
	if !strings.Contains(out, `"学生 ""太郎"""`) {
		t.Errorf("double quotes should be doubled, got %q", out)
	}
	// カンマを含むフィールドはクォートされる
	if !strings.Contains(out, `"設計, 実装"`) {
		t.Errorf("comma field should be quoted, got %q", out)
	}
	// 改行を含むフィールドはクォートされる
	if !strings.Contains(out, "\"改行を\n含む本文\"") {
		t.Errorf("newline field should be quoted, got %q", out)
	}
}

func TestWriteCSV_EmptyListWritesHeaderOnly(t *testing.T) {
	var sb strings.Builder
	if err := WriteCSV(&sb, nil); err != nil {
		t.Fatalf("WriteCSV() error = %v", err)
	}
	if sb.String() != "ID,Student Name,Course Name,Rating,Message,Date\n" {
		t.Errorf("output = %q, want header only", sb.String())
	}
}
