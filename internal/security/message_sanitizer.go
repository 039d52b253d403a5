// Package security はアプリケーションのセキュリティ機能を提供する。
//
// MessageSanitizerService は学生が投稿するフィードバック本文をサニタイズし、
// 管理画面での表示時にXSS攻撃が成立しないようにする。
// フィードバック本文は自由入力のプレーンテキストとして扱うため、
// bluemondayのStrictPolicyで全てのHTMLタグを除去する。
package security

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// MessageSanitizerService はフィードバック本文のサニタイズ機能のインターフェースを定義する。
// フィードバックの作成時および更新時に使用される。
type MessageSanitizerService interface {
	// Sanitize は本文から全てのHTMLタグを除去し、前後の空白を整えて返す。
	// 空文字列の入力には空文字列を返す。
	// 同一入力に対して常に同一出力を返す（冪等）。
	Sanitize(raw string) string
}

// messageSanitizer はMessageSanitizerServiceの実装。
// bluemondayのポリシーを保持し、スレッドセーフにサニタイズ処理を行う。
type messageSanitizer struct {
	policy *bluemonday.Policy
}

// NewMessageSanitizer はMessageSanitizerServiceの新しいインスタンスを生成する。
// StrictPolicyは許可タグを一切持たないため、scriptタグやon*イベント属性を
// 含むあらゆるHTMLが除去され、テキストのみが残る。
func NewMessageSanitizer() *messageSanitizer {
	return &messageSanitizer{
		policy: bluemonday.StrictPolicy(),
	}
}

// Sanitize は本文から全てのHTMLタグを除去して返す。
func (s *messageSanitizer) Sanitize(raw string) string {
	return strings.TrimSpace(s.policy.Sanitize(raw))
}
