package feedback

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/hitoshi/classpulse/internal/model"
)

// csvHeader はCSVエクスポートのヘッダー行。
var csvHeader = []string{"ID", "Student Name", "Course Name", "Rating", "Message", "Date"}

// WriteCSV はフィードバック一覧をCSV形式で書き出す。
// 1行目はヘッダー。本文中のダブルクォートはRFC 4180に従い二重化される。
// 日時はISO-8601（UTC）で出力する。
func WriteCSV(w io.Writer, fbs []*model.Feedback) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("CSVヘッダーの書き込みに失敗しました: %w", err)
	}

	for _, fb := range fbs {
		record := []string{
			fb.ID,
			fb.StudentName,
			fb.CourseName,
			strconv.Itoa(fb.Rating),
			fb.Message,
			fb.CreatedAt.UTC().Format(time.RFC3339),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("CSV行の書き込みに失敗しました: %w", err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("CSVの出力に失敗しました: %w", err)
	}
	return nil
}
