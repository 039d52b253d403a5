package ai

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// ユーザーに返すフォールバック文言。
// AI機能は補助機能のため、失敗をエラーとして伝播させず文言で知らせる。
const (
	msgDisabled           = "AI機能は無効です。APIキーを設定してください。"
	msgGenerateFailed     = "説明文の生成に失敗しました。しばらく待ってから再度お試しください。"
	msgSummarizeFailed    = "フィードバックの要約に失敗しました。しばらく待ってから再度お試しください。"
	msgNothingToSummarize = "要約対象のフィードバックが選択されていません。"
)

// TextGenerator はテキスト生成クライアントのインターフェース。
// GeminiClientの部分集合として定義する。
type TextGenerator interface {
	GenerateText(ctx context.Context, prompt string, cfg *GenerationConfig) (string, error)
}

// MetricsRecorder はAI呼び出しのメトリクス記録インターフェース。nil可。
type MetricsRecorder interface {
	RecordAIRequest(operation string, success bool, duration time.Duration)
}

// Service はAIテキスト生成のサービス層。
// 全操作がソフトフェイル: 外部呼び出しの失敗や未設定のAPIキーは
// エラーではなくフォールバック文言として返り、呼び出し元に
// 生のエラーが到達することはない。
type Service struct {
	generator TextGenerator
	metrics   MetricsRecorder
	enabled   bool
}

// NewService はServiceを生成する。
// generatorがnilの場合（APIキー未設定）はAI機能を無効として扱う。
func NewService(generator TextGenerator, metrics MetricsRecorder) *Service {
	return &Service{
		generator: generator,
		metrics:   metrics,
		enabled:   generator != nil,
	}
}

// GenerateDescription はコース名から50〜70語程度の説明文を生成する。
func (s *Service) GenerateDescription(ctx context.Context, courseName string) string {
	if !s.enabled {
		return msgDisabled
	}

	prompt := fmt.Sprintf(
		"「%s」というタイトルのコースの、簡潔で魅力的な説明文を生成してください。50〜70語程度でお願いします。",
		courseName,
	)
	topP := 1.0
	topK := 32
	cfg := &GenerationConfig{
		Temperature: 0.7,
		TopP:        &topP,
		TopK:        &topK,
	}

	text, err := s.generate(ctx, "generate_description", prompt, cfg)
	if err != nil {
		slog.Error("コース説明文の生成に失敗しました",
			slog.String("course_name", courseName),
			slog.String("error", err.Error()),
		)
		return msgGenerateFailed
	}
	return text
}

// SummarizeFeedback はフィードバック本文の一覧を要約する。
// 空のリストには固定の文言を返す。
func (s *Service) SummarizeFeedback(ctx context.Context, messages []string) string {
	if !s.enabled {
		return msgDisabled
	}
	if len(messages) == 0 {
		return msgNothingToSummarize
	}

	var sb strings.Builder
	sb.WriteString("教育フィードバック分析の専門家として、以下の受講生フィードバックを要約してください。\n")
	sb.WriteString("共通テーマ、全体的な傾向（肯定的・否定的・混在）を特定し、")
	sb.WriteString("コース改善のための実行可能な提案を2〜3件挙げてください。\n")
	sb.WriteString("「要約」「共通テーマ」「全体的な傾向」「改善提案」の見出しで整理して回答してください。\n\n")
	sb.WriteString("フィードバック一覧:\n")
	for i, msg := range messages {
		fmt.Fprintf(&sb, "%d. %q\n", i+1, msg)
	}

	cfg := &GenerationConfig{Temperature: 0.5}

	text, err := s.generate(ctx, "summarize_feedback", sb.String(), cfg)
	if err != nil {
		slog.Error("フィードバックの要約に失敗しました",
			slog.Int("message_count", len(messages)),
			slog.String("error", err.Error()),
		)
		return msgSummarizeFailed
	}
	return text
}

// generate はメトリクス記録付きでテキスト生成を実行する。
func (s *Service) generate(ctx context.Context, operation, prompt string, cfg *GenerationConfig) (string, error) {
	start := time.Now()
	text, err := s.generator.GenerateText(ctx, prompt, cfg)
	if s.metrics != nil {
		s.metrics.RecordAIRequest(operation, err == nil, time.Since(start))
	}
	return text, err
}
